package invitation

import (
	"github.com/smallbiznis/paws/internal/invitation/repository"
	"github.com/smallbiznis/paws/internal/invitation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invitation.service",
	fx.Provide(repository.Provide),
	fx.Provide(
		service.NewValidator,
		service.NewSignupGate,
		service.NewProvisioner,
	),
)
