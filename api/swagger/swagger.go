// Package swagger embeds the OpenAPI document for the REST surface.
package swagger

import _ "embed"

// FileName is the path segment the document is served under.
const FileName = "directory.swagger.json"

//go:embed directory.swagger.json
var Doc []byte
