package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"sync"
	"time"

	"baydelivery/internal/backup"
)

const (
	apiBase    = "https://www.googleapis.com/drive/v3"
	uploadBase = "https://www.googleapis.com/upload/drive/v3"

	folderMIME   = "application/vnd.google-apps.folder"
	snapshotMIME = "application/gzip"

	// Snapshots live under a db_backups subfolder of the shared vault
	// folder, so the same folder can hold other operator files.
	backupsFolderName = "db_backups"

	defaultKeep = 50
	minKeep     = 5
)

// Client talks to the Google Drive v3 API with a service account and
// stores snapshot blobs under a fixed folder. It implements the vault
// contract used by the backup handlers.
type Client struct {
	HTTPClient *http.Client
	FolderID   string

	// Keep is how many snapshots to retain after each upload; older
	// ones are deleted. Zero means defaultKeep.
	Keep int

	tokens *tokenSource

	mu        sync.Mutex
	backupsID string
}

// New builds a Drive client from the vault folder id and the
// base64-encoded service account key JSON.
func New(folderID, serviceAccountKeyB64 string, keep int) (*Client, error) {
	if folderID == "" || serviceAccountKeyB64 == "" {
		return nil, fmt.Errorf("missing drive folder id or service account key")
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}
	tokens, err := newTokenSource(serviceAccountKeyB64, httpClient)
	if err != nil {
		return nil, err
	}

	return &Client{
		HTTPClient: httpClient,
		FolderID:   folderID,
		Keep:       keep,
		tokens:     tokens,
	}, nil
}

type driveFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MimeType    string `json:"mimeType"`
	Size        string `json:"size,omitempty"`
	CreatedTime string `json:"createdTime,omitempty"`
}

type fileList struct {
	Files []driveFile `json:"files"`
}

func (c *Client) do(ctx context.Context, method, rawURL string, contentType string, body io.Reader, respBody any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return 0, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(b) > 0 {
			return resp.StatusCode, fmt.Errorf("drive api error: status=%d body=%s", resp.StatusCode, string(b))
		}
		return resp.StatusCode, fmt.Errorf("drive api error: status=%d", resp.StatusCode)
	}

	if respBody != nil && len(b) > 0 {
		if err := json.Unmarshal(b, respBody); err != nil {
			return resp.StatusCode, fmt.Errorf("decode drive response failed: %w body=%s", err, string(b))
		}
	}

	return resp.StatusCode, nil
}

// backupsFolder finds or creates the db_backups subfolder and caches
// its id for the life of the client.
func (c *Client) backupsFolder(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backupsID != "" {
		return c.backupsID, nil
	}

	q := fmt.Sprintf("mimeType='%s' and name='%s' and '%s' in parents and trashed=false",
		folderMIME, backupsFolderName, c.FolderID)
	listURL := apiBase + "/files?" + url.Values{
		"q":      {q},
		"fields": {"files(id,name,mimeType,createdTime)"},
	}.Encode()

	var found fileList
	if _, err := c.do(ctx, http.MethodGet, listURL, "", nil, &found); err != nil {
		return "", err
	}
	if len(found.Files) > 0 {
		c.backupsID = found.Files[0].ID
		return c.backupsID, nil
	}

	payload, err := json.Marshal(map[string]any{
		"name":     backupsFolderName,
		"mimeType": folderMIME,
		"parents":  []string{c.FolderID},
	})
	if err != nil {
		return "", err
	}
	createURL := apiBase + "/files?" + url.Values{"fields": {"id,name,mimeType"}}.Encode()

	var created driveFile
	if _, err := c.do(ctx, http.MethodPost, createURL, "application/json", bytes.NewReader(payload), &created); err != nil {
		return "", err
	}
	c.backupsID = created.ID
	return c.backupsID, nil
}

// Put uploads a snapshot blob as a multipart file create, then prunes
// old snapshots beyond the retention count.
func (c *Client) Put(ctx context.Context, name string, blob []byte) (*backup.Handle, error) {
	parentID, err := c.backupsFolder(ctx)
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(map[string]any{
		"name":    name,
		"parents": []string{parentID},
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := mw.CreatePart(metaHeader)
	if err != nil {
		return nil, err
	}
	if _, err := metaPart.Write(metadata); err != nil {
		return nil, err
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Type", snapshotMIME)
	filePart, err := mw.CreatePart(fileHeader)
	if err != nil {
		return nil, err
	}
	if _, err := filePart.Write(blob); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	uploadURL := uploadBase + "/files?" + url.Values{
		"uploadType": {"multipart"},
		"fields":     {"id,name,mimeType,size,createdTime"},
	}.Encode()

	var created driveFile
	contentType := "multipart/related; boundary=" + mw.Boundary()
	if _, err := c.do(ctx, http.MethodPost, uploadURL, contentType, &buf, &created); err != nil {
		return nil, err
	}

	// Retention pruning is best-effort; the upload already succeeded.
	c.prune(ctx, parentID)

	return toHandle(created), nil
}

// List returns snapshot handles newest-first.
func (c *Client) List(ctx context.Context) ([]backup.Handle, error) {
	parentID, err := c.backupsFolder(ctx)
	if err != nil {
		return nil, err
	}

	files, err := c.listFolder(ctx, parentID, 100)
	if err != nil {
		return nil, err
	}

	handles := make([]backup.Handle, 0, len(files))
	for _, f := range files {
		handles = append(handles, *toHandle(f))
	}
	return handles, nil
}

// Get downloads a snapshot blob by file id.
func (c *Client) Get(ctx context.Context, id string) ([]byte, error) {
	mediaURL := apiBase + "/files/" + url.PathEscape(id) + "?" + url.Values{"alt": {"media"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, err
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("drive download error: status=%d body=%s", resp.StatusCode, string(b))
	}
	return b, nil
}

func (c *Client) listFolder(ctx context.Context, parentID string, limit int) ([]driveFile, error) {
	q := fmt.Sprintf("'%s' in parents and trashed=false", parentID)
	listURL := apiBase + "/files?" + url.Values{
		"q":        {q},
		"pageSize": {strconv.Itoa(limit)},
		"orderBy":  {"createdTime desc"},
		"fields":   {"files(id,name,mimeType,size,createdTime)"},
	}.Encode()

	var out fileList
	if _, err := c.do(ctx, http.MethodGet, listURL, "", nil, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

func (c *Client) prune(ctx context.Context, parentID string) {
	keep := c.Keep
	if keep <= 0 {
		keep = defaultKeep
	}
	if keep < minKeep {
		keep = minKeep
	}

	files, err := c.listFolder(ctx, parentID, keep+100)
	if err != nil {
		return
	}
	for _, f := range files[min(keep, len(files)):] {
		deleteURL := apiBase + "/files/" + url.PathEscape(f.ID)
		_, _ = c.do(ctx, http.MethodDelete, deleteURL, "", nil, nil)
	}
}

func toHandle(f driveFile) *backup.Handle {
	h := &backup.Handle{ID: f.ID, Name: f.Name}
	if f.Size != "" {
		if n, err := strconv.ParseInt(f.Size, 10, 64); err == nil {
			h.Size = n
		}
	}
	if f.CreatedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
			h.CreatedAt = t
		}
	}
	return h
}
