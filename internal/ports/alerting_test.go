package ports_test

import (
	redisadapter "github.com/target/failwire/internal/adapters/redis"
	"github.com/target/failwire/internal/mocks"
	"github.com/target/failwire/internal/ports"
)

var (
	_ ports.CooldownStore = (*redisadapter.CooldownStore)(nil)
	_ ports.CooldownStore = (*mocks.MockCooldownStore)(nil)
)
