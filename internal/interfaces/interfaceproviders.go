package interfaces

import (
	"github.com/google/wire"

	"persona-chat/internal/interfaces/httpserver"
)

var InterfacesProvider = wire.NewSet(
	httpserver.NewHttpServer,
)
