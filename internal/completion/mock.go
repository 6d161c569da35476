package completion

import "context"

// MockClient is a test implementation of Client.
type MockClient struct {
	CompleteFunc func(ctx context.Context, system, user string) (string, error)

	// Calls records every (system, user) pair for assertion.
	Calls []MockCall
}

type MockCall struct {
	System string
	User   string
}

// Complete delegates to the configured function or echoes the user prompt.
func (m *MockClient) Complete(ctx context.Context, system, user string) (string, error) {
	m.Calls = append(m.Calls, MockCall{System: system, User: user})
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, user)
	}
	return user, nil
}
