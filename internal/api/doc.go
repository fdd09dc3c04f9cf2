// Package api contains the HTTP layer: request/response models,
// handlers, and the error-to-status mapping. Handlers stay thin and
// delegate all domain decisions to the service layer.
package api
