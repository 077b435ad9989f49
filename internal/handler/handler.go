// Package handler is the first layer after the router.
//
// It binds and validates requests using the validation package, calls the
// service layer and writes the response. Issue operation outcomes that are
// not a success travel back as errors and are written by the global error
// handler.
package handler
