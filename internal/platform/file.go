package platform

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcuadros/go-version"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/tdh8316/acclookup/internal/httpx"
)

// AppVersion is compared against the "requires" constraint of registry files.
var AppVersion = "1.1.0"

// Parse reads a registry document:
//
//	{"requires": ">=1.0.0", "platforms": {"GitHub": "https://github.com/{}"}}
//
// Platform order follows the document.
func Parse(raw []byte) (*Registry, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("registry: invalid json")
	}
	doc := gjson.ParseBytes(raw)

	if req := doc.Get("requires"); req.Exists() {
		if err := checkRequires(req.String()); err != nil {
			return nil, err
		}
	}

	list := doc.Get("platforms")
	if !list.IsObject() {
		return nil, errors.New(`registry: "platforms" must be an object`)
	}

	var (
		platforms []Platform
		parseErr  error
	)
	list.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			parseErr = errors.Errorf("registry: platform %q: template must be a string", key.String())
			return false
		}
		platforms = append(platforms, Platform{Name: key.String(), Template: value.String()})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(platforms) == 0 {
		return nil, errors.New("registry: no platforms defined")
	}

	r, err := NewRegistry(platforms)
	if err != nil {
		return nil, errors.Wrap(err, "registry")
	}
	return r, nil
}

// checkRequires accepts constraints like ">=1.0.0" or a bare version meaning ">=".
func checkRequires(req string) error {
	req = strings.TrimSpace(req)
	if req == "" {
		return nil
	}

	op := ">="
	for _, candidate := range []string{">=", "<=", "==", "!=", ">", "<", "="} {
		if strings.HasPrefix(req, candidate) {
			op = candidate
			req = strings.TrimSpace(strings.TrimPrefix(req, candidate))
			break
		}
	}
	if op == "=" {
		op = "=="
	}

	if !version.Compare(AppVersion, req, op) {
		return errors.Errorf("registry: requires version %s%s, running %s", op, req, AppVersion)
	}
	return nil
}

// LoadFile reads and parses a registry file.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read registry")
	}
	r, err := Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return r, nil
}

// Load returns the registry from path, or the built-in one when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Builtin(), nil
	}
	return LoadFile(path)
}

// Fetch downloads a registry document from rawURL, validates it, and writes it to destPath.
func Fetch(ctx context.Context, client httpx.Doer, userAgent, rawURL, destPath string) (*Registry, error) {
	req, err := httpx.NewRequest(ctx, http.MethodGet, rawURL, nil, userAgent)
	if err != nil {
		return nil, errors.Wrap(err, "fetch registry")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch registry")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, errors.Errorf("fetch registry: download failed: %s (%s)", resp.Status, string(snippet))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, errors.Wrap(err, "fetch registry: read body")
	}

	// Refuse to replace a working file with something unusable.
	r, err := Parse(body)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch registry %s", rawURL)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "save registry")
	}
	tmp := destPath + ".tmp"
	if err := os.WriteFile(tmp, body, 0o600); err != nil {
		return nil, errors.Wrap(err, "save registry")
	}
	if err := os.Rename(tmp, destPath); err != nil {
		return nil, errors.Wrap(err, "save registry")
	}
	return r, nil
}
