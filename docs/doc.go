// Package docs provides generated OpenAPI documentation.
//
// Bindery API
//
//	@title			Bindery API
//	@version		1.0
//	@description	PDF to ePub conversion API: documents, page editing, transcription, profiles, and export.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/bindery/bindery
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/bindery/serve.go -o ./swagger --parseDependency --parseInternal
