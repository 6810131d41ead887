// Package mocks provides mock implementations for testing the failwire pipeline.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the
// transport and cooldown ports. To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	transport := mocks.NewMockTransport(ctrl)
//	transport.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mock for the Transport interface from internal/notify.
// This creates MockTransport with a Deliver method.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=transport_mock.go github.com/target/failwire/internal/notify Transport

// Generate mock for the CooldownStore interface from internal/ports.
// This creates MockCooldownStore with Acquire and Reset methods.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cooldown_store_mock.go github.com/target/failwire/internal/ports CooldownStore
