package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/AnotherFullstackDev/spinewire/internal/config"
	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/option"
)

var ErrCannotSign = errors.New("credentials cannot sign URLs, configure a service account for the disk")

// Disk is a Cloud Storage bucket seen through a path prefix, with signed URL support.
type Disk struct {
	config        config.DiskConfig
	client        *storage.Client
	bucket        *storage.BucketHandle
	signer        BlobSigner
	nativeSigning bool
	closers       []io.Closer
}

// NewDisk builds the storage client for a disk. Credentials that cannot sign on their own impersonate
// the configured service account and sign through IAM.
func NewDisk(ctx context.Context, cfg config.DiskConfig, opts ...option.ClientOption) (*Disk, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w - storage disk bucket is required", lib.BadUserInputError)
	}

	nativeSigning := CanSignNatively(ctx)
	clientOpts := append([]option.ClientOption{}, opts...)

	var signer *IamSigner
	if !nativeSigning && cfg.ServiceAccount != "" {
		tokenSource, err := impersonate.CredentialsTokenSource(ctx, impersonate.CredentialsConfig{
			TargetPrincipal: cfg.ServiceAccount,
			Scopes:          []string{lib.CloudPlatformScope},
		}, opts...)
		if err != nil {
			return nil, fmt.Errorf("impersonating %s: %w", cfg.ServiceAccount, err)
		}
		clientOpts = append(clientOpts, option.WithTokenSource(tokenSource))

		signer, err = NewIamSigner(ctx, cfg.ServiceAccount, opts...)
		if err != nil {
			return nil, err
		}
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	slog.DebugContext(ctx, "storage disk ready",
		"bucket", cfg.Bucket,
		"native_signing", nativeSigning,
		"service_account", cfg.ServiceAccount)

	disk := newDisk(cfg, client, nil, nativeSigning)
	if signer != nil {
		disk.signer = signer
		disk.closers = append(disk.closers, signer)
	}
	return disk, nil
}

func newDisk(cfg config.DiskConfig, client *storage.Client, signer BlobSigner, nativeSigning bool) *Disk {
	return &Disk{
		config:        cfg,
		client:        client,
		bucket:        client.Bucket(cfg.Bucket),
		signer:        signer,
		nativeSigning: nativeSigning,
		closers:       []io.Closer{client},
	}
}

func (d *Disk) objectName(p string) string {
	p = strings.TrimLeft(p, "/")
	if d.config.PathPrefix == "" {
		return p
	}
	return path.Join(strings.Trim(d.config.PathPrefix, "/"), p)
}

// URL is the public URL of an object, it does not grant access by itself.
func (d *Disk) URL(p string) string {
	base := d.config.StorageApiUri
	if base == "" {
		base = lib.DefaultStorageApiUri
	}
	return strings.TrimRight(base, "/") + "/" + d.config.Bucket + "/" + d.objectName(p)
}

func (d *Disk) TemporaryURL(ctx context.Context, p string, expires time.Time) (string, error) {
	return d.signedURL(ctx, p, &storage.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: expires,
	})
}

func (d *Disk) TemporaryUploadURL(ctx context.Context, p string, expires time.Time, contentType string) (string, error) {
	if contentType == "" {
		contentType = lib.DefaultUploadContentType
	}
	return d.signedURL(ctx, p, &storage.SignedURLOptions{
		Method:      http.MethodPut,
		Expires:     expires,
		ContentType: contentType,
	})
}

func (d *Disk) signedURL(ctx context.Context, p string, opts *storage.SignedURLOptions) (string, error) {
	opts.Scheme = storage.SigningSchemeV4

	switch {
	case d.nativeSigning:
	case d.signer != nil:
		signer := d.signer
		opts.GoogleAccessID = signer.ServiceAccount()
		opts.SignBytes = func(payload []byte) ([]byte, error) {
			return signer.SignBlob(ctx, payload)
		}
	default:
		return "", ErrCannotSign
	}

	u, err := d.bucket.SignedURL(d.objectName(p), opts)
	if err != nil {
		return "", fmt.Errorf("signing %s URL for %s: %w", opts.Method, p, err)
	}
	return u, nil
}

func (d *Disk) Put(ctx context.Context, p string, r io.Reader, contentType string) error {
	w := d.bucket.Object(d.objectName(p)).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("uploading %s: %w", p, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing upload of %s: %w", p, err)
	}
	return nil
}

func (d *Disk) Get(ctx context.Context, p string) (io.ReadCloser, error) {
	r, err := d.bucket.Object(d.objectName(p)).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return r, nil
}

// Delete treats a missing object as already deleted.
func (d *Disk) Delete(ctx context.Context, p string) error {
	err := d.bucket.Object(d.objectName(p)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting %s: %w", p, err)
	}
	return nil
}

func (d *Disk) Exists(ctx context.Context, p string) (bool, error) {
	_, err := d.bucket.Object(d.objectName(p)).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", p, err)
	}
	return true, nil
}

func (d *Disk) Close() error {
	var errs []error
	for _, closer := range d.closers {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}
