package liquidity_test

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/dex-wallet/pkg/liquidity"
	"github.com/code-payments/dex-wallet/pkg/signer"
	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/computebudget"
	"github.com/code-payments/dex-wallet/pkg/solana/memo"
	"github.com/code-payments/dex-wallet/pkg/testutil"
)

type decliningSigner struct {
	pub ed25519.PublicKey
}

func (s *decliningSigner) PublicKey() ed25519.PublicKey {
	return s.pub
}

func (s *decliningSigner) Sign(_ context.Context, _ []byte, _ signer.AuthContext) (solana.Signature, error) {
	return solana.Signature{}, errors.Wrap(signer.ErrSigningDeclined, "user cancelled")
}

func buildSwap(t *testing.T, env *testEnv) *liquidity.Description {
	env.setPoolState(liquidity.PoolState{ReserveX: 4000, ReserveY: 1000, LpSupply: 2000})

	desc, err := env.assembler.Swap(context.Background(), &liquidity.SwapArgs{
		Payer:      env.payerKey(),
		InputMint:  env.mintY,
		OutputMint: env.mintX,
		AmountIn:   dec("1000"),
	})
	require.NoError(t, err)
	return desc
}

func TestExecutor_Execute(t *testing.T) {
	env := setup(t)
	desc := buildSwap(t, env)

	blockhash := solana.Blockhash{7, 7, 7}
	env.sc.SetBlockhash(blockhash)

	local, err := signer.NewLocalKeySigner(env.payer)
	require.NoError(t, err)

	executor := liquidity.NewExecutor(env.sc, local, liquidity.NewRPCSubmitter(env.sc), liquidity.WithEnvConfigs())

	sig, err := executor.Execute(context.Background(), desc, nil)
	require.NoError(t, err)

	submitted := env.sc.Submitted()
	require.Len(t, submitted, 1)

	txn := submitted[0]
	assert.Equal(t, sig, txn.Signature())
	assert.Equal(t, blockhash, txn.Message.RecentBlockhash)
	assert.EqualValues(t, env.payerKey(), txn.Message.Accounts[0])
	assert.EqualValues(t, 1, txn.Message.Header.NumSignatures)
	require.Len(t, txn.Message.Instructions, 1)
	assert.Equal(t, desc.Instruction.Data, txn.Message.Instructions[0].Data)
	assert.True(t, ed25519.Verify(env.payerKey(), txn.Message.Marshal(), sig[:]))
}

func TestExecutor_Build(t *testing.T) {
	env := setup(t)
	desc := buildSwap(t, env)

	local, err := signer.NewLocalKeySigner(env.payer)
	require.NoError(t, err)

	executor := liquidity.NewExecutor(env.sc, local, liquidity.NewRPCSubmitter(env.sc), liquidity.WithEnvConfigs())

	txn, err := executor.Build(context.Background(), desc)
	require.NoError(t, err)
	assert.Equal(t, solana.Signature{}, txn.Signature())
	assert.LessOrEqual(t, len(txn.Marshal()), solana.MaxTransactionSize)
	assert.Empty(t, env.sc.Submitted())
}

func TestExecutor_BuildWithBudgetAndMemo(t *testing.T) {
	t.Setenv(liquidity.ComputeUnitLimitConfigEnvName, "300000")
	t.Setenv(liquidity.ComputeUnitPriceConfigEnvName, "5000")
	t.Setenv(liquidity.AttachMemoConfigEnvName, "true")

	env := setup(t)
	desc := buildSwap(t, env)

	local, err := signer.NewLocalKeySigner(env.payer)
	require.NoError(t, err)

	executor := liquidity.NewExecutor(env.sc, local, liquidity.NewRPCSubmitter(env.sc), liquidity.WithEnvConfigs())

	txn, err := executor.Build(context.Background(), desc)
	require.NoError(t, err)
	require.Len(t, txn.Message.Instructions, 4)

	limit, err := computebudget.ParseSetComputeUnitLimit(txn.Message.Instructions[0].Data)
	require.NoError(t, err)
	assert.EqualValues(t, 300_000, limit)

	price, err := computebudget.ParseSetComputeUnitPrice(txn.Message.Instructions[1].Data)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, price)

	text, err := memo.Decompile(txn.Message, 2)
	require.NoError(t, err)
	assert.Equal(t, "dexwallet/swap", text)

	assert.Equal(t, desc.Instruction.Data, txn.Message.Instructions[3].Data)
	assert.LessOrEqual(t, len(txn.Marshal()), solana.MaxTransactionSize)
}

func TestExecutor_PayerMismatch(t *testing.T) {
	env := setup(t)
	desc := buildSwap(t, env)

	other, err := signer.NewLocalKeySigner(testutil.GenerateSolanaKeypair(t))
	require.NoError(t, err)

	executor := liquidity.NewExecutor(env.sc, other, liquidity.NewRPCSubmitter(env.sc), liquidity.WithEnvConfigs())

	_, err = executor.Execute(context.Background(), desc, nil)
	assert.ErrorIs(t, err, liquidity.ErrPayerMismatch)
	assert.Empty(t, env.sc.Submitted())
}

func TestExecutor_SigningDeclined(t *testing.T) {
	env := setup(t)
	desc := buildSwap(t, env)

	executor := liquidity.NewExecutor(env.sc, &decliningSigner{pub: env.payerKey()}, liquidity.NewRPCSubmitter(env.sc), liquidity.WithEnvConfigs())

	_, err := executor.Execute(context.Background(), desc, nil)
	assert.ErrorIs(t, err, signer.ErrSigningDeclined)
	assert.Empty(t, env.sc.Submitted())
	assert.Zero(t, env.sc.CallCount("SubmitTransaction"))
}

func TestExecutor_BlockhashFailure(t *testing.T) {
	env := setup(t)
	desc := buildSwap(t, env)

	local, err := signer.NewLocalKeySigner(env.payer)
	require.NoError(t, err)

	env.sc.BlockhashErr = errors.New("node unhealthy")
	executor := liquidity.NewExecutor(env.sc, local, liquidity.NewRPCSubmitter(env.sc), liquidity.WithEnvConfigs())

	_, err = executor.Execute(context.Background(), desc, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, liquidity.ErrSubmissionFailed))
	assert.Zero(t, env.sc.CallCount("SubmitTransaction"))
}

func TestExecutor_SubmissionFailed(t *testing.T) {
	env := setup(t)
	desc := buildSwap(t, env)

	local, err := signer.NewLocalKeySigner(env.payer)
	require.NoError(t, err)

	env.sc.SubmitErr = &solana.TransactionError{Key: solana.TransactionErrorBlockhashNotFound}
	executor := liquidity.NewExecutor(env.sc, local, liquidity.NewRPCSubmitter(env.sc), liquidity.WithEnvConfigs())

	_, err = executor.Execute(context.Background(), desc, nil)
	assert.ErrorIs(t, err, liquidity.ErrSubmissionFailed)

	var txErr *solana.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, solana.TransactionErrorBlockhashNotFound, txErr.Key)

	assert.Equal(t, "The network rejected the transaction: BlockhashNotFound.", liquidity.UserMessage(err))
}

func TestRPCSubmitter_InvalidTransaction(t *testing.T) {
	env := setup(t)

	_, err := liquidity.NewRPCSubmitter(env.sc).Submit(context.Background(), []byte{0xff})
	assert.Error(t, err)
	assert.Zero(t, env.sc.CallCount("SubmitTransaction"))
}
