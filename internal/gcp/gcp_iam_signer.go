package gcp

import (
	"context"
	"fmt"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"google.golang.org/api/option"
)

// BlobSigner signs payloads on behalf of a service account.
type BlobSigner interface {
	SignBlob(ctx context.Context, payload []byte) ([]byte, error)
	ServiceAccount() string
}

// IamSigner signs through the IAM Credentials API with the caller's own credentials,
// so a developer's gcloud login can sign URLs for a service account it may act as.
type IamSigner struct {
	client         *credentials.IamCredentialsClient
	serviceAccount string
}

func NewIamSigner(ctx context.Context, serviceAccount string, opts ...option.ClientOption) (*IamSigner, error) {
	client, err := credentials.NewIamCredentialsClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating IAM credentials client: %w", err)
	}

	return &IamSigner{client: client, serviceAccount: serviceAccount}, nil
}

func (s *IamSigner) ServiceAccount() string {
	return s.serviceAccount
}

func (s *IamSigner) SignBlob(ctx context.Context, payload []byte) ([]byte, error) {
	resp, err := s.client.SignBlob(ctx, &credentialspb.SignBlobRequest{
		Name:    "projects/-/serviceAccounts/" + s.serviceAccount,
		Payload: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("signing blob as %s: %w", s.serviceAccount, err)
	}
	return resp.SignedBlob, nil
}

func (s *IamSigner) Close() error {
	return s.client.Close()
}
