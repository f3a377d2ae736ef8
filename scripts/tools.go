//go:build tools

// Package tools pins the code generators behind cmd/server/wire_gen.go and docs/swagger.
package tools

import (
	_ "github.com/google/wire/cmd/wire"
	_ "github.com/swaggo/swag/cmd/swag"
)

//go:generate go install github.com/google/wire/cmd/wire
//go:generate go install github.com/swaggo/swag/cmd/swag
