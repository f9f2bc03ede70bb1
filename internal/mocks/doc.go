// Package mocks provides shared test doubles for the service and API layers.
//
// Most mocks use function fields so a test overrides only the behavior it
// cares about:
//
//	authn := &mocks.MockAuthenticator{
//	    AuthenticateFn: func(ctx context.Context, token string) (*domain.User, error) {
//	        return user, nil
//	    },
//	}
//
// Store mocks embed testify's mock.Mock for tests that assert call order or
// inject failures a real database cannot produce.
package mocks
