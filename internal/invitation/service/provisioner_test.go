package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/smallbiznis/paws/internal/config"
	"github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/smallbiznis/paws/internal/invitation/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStoresDistinctUnusedCodes(t *testing.T) {
	f := newFixture(t)

	res, err := f.provisioner.Generate(context.Background(), domain.GenerateRequest{Count: 200, Length: 8})
	require.NoError(t, err)
	require.Len(t, res.Codes, 200)
	assert.Len(t, res.BatchID, 26)
	assert.False(t, res.DryRun)

	seen := map[string]bool{}
	for _, code := range res.Codes {
		require.Len(t, code, 8)
		require.Empty(t, strings.Trim(code, config.DefaultCodeAlphabet), "unexpected characters in %q", code)
		require.False(t, seen[code], "duplicate code %q", code)
		seen[code] = true
	}

	unused := false
	listed, err := f.provisioner.List(context.Background(), domain.ListCodesRequest{BatchID: res.BatchID, Used: &unused})
	require.NoError(t, err)
	assert.Len(t, listed, 200)
}

func TestGenerateDryRunWritesNothing(t *testing.T) {
	f := newFixture(t)

	res, err := f.provisioner.Generate(context.Background(), domain.GenerateRequest{Count: 5, DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Len(t, res.Codes, 5)
	for _, code := range res.Codes {
		assert.Len(t, code, config.DefaultCodeLength)
	}
	assert.Zero(t, f.count(t, &domain.InvitationCode{}))
}

func TestGenerateRejectsUnredeemableRequests(t *testing.T) {
	f := newFixture(t)

	_, err := f.provisioner.Generate(context.Background(), domain.GenerateRequest{Count: 3, Length: 6})
	requireKind(t, err, domain.KindInvalidArgument)

	_, err = f.provisioner.Generate(context.Background(), domain.GenerateRequest{Count: 0})
	requireKind(t, err, domain.KindInvalidArgument)
}

func TestGenerateRetriesCollisions(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	p, _ := newParams(t, newTestDB(t), repo, config.DefaultEnrollmentPolicy(), config.Config{})

	gomock.InOrder(
		repo.EXPECT().InsertCode(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil),
		repo.EXPECT().InsertCode(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(2),
	)

	res, err := NewProvisioner(p).Generate(context.Background(), domain.GenerateRequest{Count: 2})
	require.NoError(t, err)
	assert.Len(t, res.Codes, 2)
}

func TestCodeGeneratorUsesAlphabet(t *testing.T) {
	gen, err := newCodeGenerator("XY", nil)
	require.NoError(t, err)

	code, err := gen.Next(32)
	require.NoError(t, err)
	assert.Len(t, code, 32)
	assert.Empty(t, strings.Trim(code, "XY"))

	_, err = newCodeGenerator("X", nil)
	assert.Error(t, err)
}

func TestCodeGeneratorSurfacesEntropyFailure(t *testing.T) {
	gen, err := newCodeGenerator("ABCDEF", bytes.NewReader(nil))
	require.NoError(t, err)

	_, err = gen.Next(8)
	assert.Error(t, err)
}

func TestResetAllMakesCodesRedeemableAgain(t *testing.T) {
	f := newFixture(t)
	f.seedCodes(t, "RESET001", "RESET002")
	require.NoError(t, redeem(f.validator, "uid1", "RESET001"))

	n, err := f.provisioner.ResetAll(context.Background(), domain.ResetRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	code := f.code(t, "RESET001")
	assert.False(t, code.Used)
	assert.Nil(t, code.UsedBy)
	assert.Nil(t, code.UsedAt)

	require.NoError(t, redeem(f.validator, "uid2", "RESET001"))
}

func TestResetAllRefusedInProductionUnlessForced(t *testing.T) {
	conn := newTestDB(t)
	p, _ := newParams(t, conn, repositoryForTest(), config.DefaultEnrollmentPolicy(), config.Config{Environment: config.EnvProduction})
	prov := NewProvisioner(p)

	_, err := prov.ResetAll(context.Background(), domain.ResetRequest{})
	requireKind(t, err, domain.KindFailedPrecondition)

	_, err = prov.ResetAll(context.Background(), domain.ResetRequest{Force: true})
	require.NoError(t, err)
}

func TestEnsureInsertsMissingCodesOnce(t *testing.T) {
	f := newFixture(t)

	n, err := f.provisioner.Ensure(context.Background(), []string{"VASCTRAC", " ", "DEVCODE2"}, SourceSeed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, redeem(f.validator, "uid1", "VASCTRAC"))

	n, err = f.provisioner.Ensure(context.Background(), []string{"VASCTRAC", "DEVCODE2"}, SourceSeed)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, f.code(t, "VASCTRAC").Used)

	_, err = f.provisioner.Ensure(context.Background(), []string{"SHORT"}, SourceSeed)
	requireKind(t, err, domain.KindInvalidArgument)
}
