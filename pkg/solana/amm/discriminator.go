package amm

import (
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/code-payments/dex-wallet/pkg/solana"
	"github.com/code-payments/dex-wallet/pkg/solana/binary"
)

const DiscriminatorSize = 8

// Discriminator is the 8 byte prefix that selects an instruction handler in
// the exchange program.
type Discriminator [DiscriminatorSize]byte

func (d Discriminator) String() string {
	return hex.EncodeToString(d[:])
}

const (
	InstructionInitialize        = "initialize"
	InstructionCreatePool        = "createPool"
	InstructionDepositLiquidity  = "depositLiquidity"
	InstructionWithdrawLiquidity = "withdrawLiquidity"
	InstructionSwap              = "swap"
	InstructionSettle            = "settle"
	InstructionCancel            = "cancel"
	InstructionSlash             = "slash"
)

var discriminators map[string]Discriminator

func init() {
	names := []string{
		InstructionInitialize,
		InstructionCreatePool,
		InstructionDepositLiquidity,
		InstructionWithdrawLiquidity,
		InstructionSwap,
		InstructionSettle,
		InstructionCancel,
		InstructionSlash,
	}

	discriminators = make(map[string]Discriminator, len(names))
	for _, name := range names {
		discriminators[name] = computeDiscriminator(name)
	}
}

// computeDiscriminator follows the Anchor convention:
// sha256("global:" + snake_case(name))[:8].
func computeDiscriminator(name string) Discriminator {
	var d Discriminator
	h := solana.Sha256([]byte("global:" + toSnakeCase(name)))
	copy(d[:], h[:DiscriminatorSize])
	return d
}

func toSnakeCase(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func GetDiscriminator(name string) (Discriminator, error) {
	d, ok := discriminators[name]
	if !ok {
		return Discriminator{}, errors.Wrap(ErrUnknownInstruction, name)
	}
	return d, nil
}

func mustGetDiscriminator(name string) Discriminator {
	d, err := GetDiscriminator(name)
	if err != nil {
		panic(err)
	}
	return d
}

// EncodeInstructionData writes the discriminator followed by each argument
// as a little endian u64, in order.
func EncodeInstructionData(d Discriminator, args ...uint64) []byte {
	e := binary.NewEncoder(DiscriminatorSize + 8*len(args))
	e.PutBytes(d[:])
	for _, arg := range args {
		e.PutUint64(arg)
	}
	return e.Bytes()
}
