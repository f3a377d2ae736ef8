//go:build wireinject

package main

import (
	"github.com/google/wire"

	"persona-chat/internal/domain/serviceprovider"
	"persona-chat/internal/infrastructure"
	"persona-chat/internal/interfaces"
	"persona-chat/internal/interfaces/httpserver/routes"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		serviceprovider.ServiceProvider,
		infrastructure.InfrastructureProvider,
		routes.RouteProvider,
		interfaces.InterfacesProvider,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
