package backup

import (
	"context"
	"errors"
	"time"
)

// Handle identifies one stored snapshot in the vault.
type Handle struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Vault is the narrow contract with the off-box snapshot store. The core
// never assumes a vault is present: ErrVaultNotConfigured degrades every
// vault operation to local-file export/import, and a vault failure never
// rolls back a completed local export.
type Vault interface {
	Put(ctx context.Context, name string, blob []byte) (*Handle, error)
	List(ctx context.Context) ([]Handle, error)
	Get(ctx context.Context, id string) ([]byte, error)
}

var ErrVaultNotConfigured = errors.New("vault not configured")
