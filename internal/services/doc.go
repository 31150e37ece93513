// Package services defines the error taxonomy shared by the collection engine
// and its collaborators.
//
// Errors are classified by wrapping one of the exported sentinel errors so
// callers can branch with errors.Is without parsing messages. The HTTP server
// maps the taxonomy onto response codes via HTTPStatus.
package services
