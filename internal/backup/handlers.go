package backup

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"baydelivery/internal/api"
)

// maxSnapshotBytes caps an uploaded snapshot blob. Generous for a
// single-operator store; mostly a guard against junk uploads.
const maxSnapshotBytes = 64 << 20

type Handlers struct {
	Service *Service

	// Vault is nil when no remote vault is configured.
	Vault Vault

	// BackupDir, when set, receives a local copy of every export.
	BackupDir string
}

// Export handles POST /admin/api/backup/export: the snapshot comes back
// as a gzipped JSON download, with a local copy written to BackupDir when
// configured. The local copy is best-effort relative to the response; a
// disk failure is logged, not fatal, because the caller still holds the
// bytes.
func (h Handlers) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.Export(r.Context())
	if err != nil {
		api.WriteInternal(w, "backup export", err)
		return
	}

	blob, err := snap.Encode()
	if err != nil {
		api.WriteInternal(w, "backup encode", err)
		return
	}

	name := Filename(snap.ExportedAt)
	h.writeLocalCopy(name, blob)

	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

// Import handles POST /admin/api/backup/import with the snapshot blob as
// the request body.
func (h Handlers) Import(w http.ResponseWriter, r *http.Request) {
	blob, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotBytes))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "failed to read snapshot body")
		return
	}

	snap, err := Decode(blob)
	if err != nil {
		writeDecodeError(w, err)
		return
	}

	report, err := h.Service.Import(r.Context(), snap)
	if err != nil {
		writeImportError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"restored": report})
}

// VaultSnapshot handles POST /admin/api/drive/snapshot: export, keep the
// local copy, then push the bytes to the vault. The local export stands
// even when the vault write fails.
func (h Handlers) VaultSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.Vault == nil {
		api.WriteError(w, http.StatusServiceUnavailable, "VAULT_NOT_CONFIGURED", "remote vault is not configured")
		return
	}

	snap, err := h.Service.Export(r.Context())
	if err != nil {
		api.WriteInternal(w, "backup export", err)
		return
	}
	blob, err := snap.Encode()
	if err != nil {
		api.WriteInternal(w, "backup encode", err)
		return
	}

	name := Filename(snap.ExportedAt)
	h.writeLocalCopy(name, blob)

	handle, err := h.Vault.Put(r.Context(), name, blob)
	if err != nil {
		if errors.Is(err, ErrVaultNotConfigured) {
			api.WriteError(w, http.StatusServiceUnavailable, "VAULT_NOT_CONFIGURED", "remote vault is not configured")
			return
		}
		// The export itself succeeded; only the off-box copy failed.
		log.Printf("[backup] vault put failed (local copy retained): %v", err)
		api.WriteError(w, http.StatusBadGateway, "VAULT_UNAVAILABLE", "vault upload failed; local snapshot retained")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "handle": handle})
}

// VaultList handles GET /admin/api/drive/backups.
func (h Handlers) VaultList(w http.ResponseWriter, r *http.Request) {
	if h.Vault == nil {
		api.WriteError(w, http.StatusServiceUnavailable, "VAULT_NOT_CONFIGURED", "remote vault is not configured")
		return
	}

	handles, err := h.Vault.List(r.Context())
	if err != nil {
		if errors.Is(err, ErrVaultNotConfigured) {
			api.WriteError(w, http.StatusServiceUnavailable, "VAULT_NOT_CONFIGURED", "remote vault is not configured")
			return
		}
		api.WriteInternal(w, "vault list", err)
		return
	}
	if handles == nil {
		handles = []Handle{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": handles})
}

type vaultRestoreRequest struct {
	Handle string `json:"handle"`
}

// VaultRestore handles POST /admin/api/drive/restore {handle}.
func (h Handlers) VaultRestore(w http.ResponseWriter, r *http.Request) {
	if h.Vault == nil {
		api.WriteError(w, http.StatusServiceUnavailable, "VAULT_NOT_CONFIGURED", "remote vault is not configured")
		return
	}

	var body vaultRestoreRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Handle == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing handle")
		return
	}

	blob, err := h.Vault.Get(r.Context(), body.Handle)
	if err != nil {
		if errors.Is(err, ErrVaultNotConfigured) {
			api.WriteError(w, http.StatusServiceUnavailable, "VAULT_NOT_CONFIGURED", "remote vault is not configured")
			return
		}
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "snapshot handle not found")
		return
	}

	snap, err := Decode(blob)
	if err != nil {
		writeDecodeError(w, err)
		return
	}
	report, err := h.Service.Import(r.Context(), snap)
	if err != nil {
		writeImportError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "restored": report})
}

func (h Handlers) writeLocalCopy(name string, blob []byte) {
	if h.BackupDir == "" {
		return
	}
	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		log.Printf("[backup] create backup dir: %v", err)
		return
	}
	path := filepath.Join(h.BackupDir, name)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		log.Printf("[backup] write local copy: %v", err)
	}
}

// writeDecodeError covers body parsing: a version mismatch is its own
// code, anything else malformed is a plain validation failure.
func writeDecodeError(w http.ResponseWriter, err error) {
	var mismatch *SchemaMismatchError
	if errors.As(err, &mismatch) {
		api.WriteError(w, http.StatusBadRequest, "SCHEMA_MISMATCH", mismatch.Error())
		return
	}
	api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "snapshot is not a valid backup blob")
}

func writeImportError(w http.ResponseWriter, err error) {
	var mismatch *SchemaMismatchError
	var busy *BusyError
	switch {
	case errors.As(err, &mismatch):
		api.WriteError(w, http.StatusBadRequest, "SCHEMA_MISMATCH", mismatch.Error())
	case errors.As(err, &busy):
		api.WriteError(w, http.StatusConflict, "STORE_BUSY", busy.Error())
	default:
		api.WriteInternal(w, "backup import", err)
	}
}
