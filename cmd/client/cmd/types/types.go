package types

type contextKey string

// ClientAppKey carries the initialized *client.App through the cobra command
// context.
const ClientAppKey contextKey = "clientApp"
