package caserecord

import "context"

// Repository is the server-side persistence contract for case records.
type Repository interface {
	Create(ctx context.Context, c *Case) (*Case, error)
	Get(ctx context.Context, id string) (*Case, error)
	// Replace overwrites the mutable fields of a case and bumps its edit
	// count in the same transaction.
	Replace(ctx context.Context, c *Case) (*Case, error)
	List(ctx context.Context) ([]Summary, error)
}
