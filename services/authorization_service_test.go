package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videoninja/models"
)

func TestGrantAuthorizerDefaults(t *testing.T) {
	tests := []struct {
		name          string
		defaultAnswer models.AuthorizationStatus
		want          models.AuthorizationStatus
	}{
		{name: "authorized", defaultAnswer: models.AuthorizationAuthorized, want: models.AuthorizationAuthorized},
		{name: "denied", defaultAnswer: models.AuthorizationDenied, want: models.AuthorizationDenied},
		{name: "never answers", defaultAnswer: models.AuthorizationNotDetermined, want: models.AuthorizationNotDetermined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			auth := NewGrantAuthorizer(openTestDB(t), tt.defaultAnswer)

			status, err := auth.Status(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, models.AuthorizationNotDetermined, status)

			status, err = auth.Request(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)

			status, err = auth.Status(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestGrantAuthorizerKeepsEarlierAnswer(t *testing.T) {
	ctx := context.Background()
	auth := NewGrantAuthorizer(openTestDB(t), models.AuthorizationAuthorized)

	require.NoError(t, auth.Set(ctx, "bob", models.AuthorizationDenied))
	status, err := auth.Request(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.AuthorizationDenied, status)

	require.NoError(t, auth.Set(ctx, "bob", models.AuthorizationAuthorized))
	status, err = auth.Status(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.AuthorizationAuthorized, status)

	status, err = auth.Status(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, models.AuthorizationNotDetermined, status, "grants are per subject")
}
