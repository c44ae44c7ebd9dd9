package fields

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/polystake/noderegistry/logging/fields/stringer"
)

const (
	FieldAddress      = "address"
	FieldAmount       = "amount"
	FieldCapability   = "capability"
	FieldCount        = "count"
	FieldDuration     = "duration"
	FieldEvent        = "event"
	FieldMigration    = "migration"
	FieldName         = "name"
	FieldOperatorId   = "operator_id"
	FieldOperatorIDs  = "operator_ids"
	FieldOwnerAddress = "owner_address"
	FieldPubKey       = "pubkey"
	FieldShares       = "shares"
	FieldStatus       = "status"
	FieldTook         = "took"
	FieldTotalRewards = "total_rewards"
	FieldValidatorId  = "validator_id"
	FieldVersion      = "version"
)

func OperatorID(operatorId uint64) zap.Field {
	return zap.Uint64(FieldOperatorId, operatorId)
}

func OperatorIDs(operatorIDs []uint64) zap.Field {
	return zap.Uint64s(FieldOperatorIDs, operatorIDs)
}

func OwnerAddress(addr common.Address) zap.Field {
	return zap.Stringer(FieldOwnerAddress, addr)
}

func PubKey(pubKey []byte) zapcore.Field {
	return zap.Stringer(FieldPubKey, stringer.HexStringer{Val: pubKey})
}

func ValidatorID(validatorId uint64) zap.Field {
	return zap.Stringer(FieldValidatorId, stringer.Uint64Stringer{Val: validatorId})
}

func Shares(vals []*big.Int) zap.Field {
	return zap.Stringer(FieldShares, stringer.FuncStringer{
		Fn: func() string {
			strs := make([]string, len(vals))
			for i, v := range vals {
				strs[i] = v.String()
			}
			return strings.Join(strs, ",")
		},
	})
}

func Status(val fmt.Stringer) zap.Field {
	return zap.Stringer(FieldStatus, val)
}

func Capability(val string) zap.Field {
	return zap.String(FieldCapability, val)
}

func EventName(val string) zap.Field {
	return zap.String(FieldEvent, val)
}

func Name(val string) zap.Field {
	return zap.String(FieldName, val)
}

func Migration(val string) zap.Field {
	return zap.String(FieldMigration, val)
}

func Amount(val fmt.Stringer) zap.Field {
	return zap.Stringer(FieldAmount, val)
}

func TotalRewards(val fmt.Stringer) zap.Field {
	return zap.Stringer(FieldTotalRewards, val)
}

func Count(val int) zap.Field {
	return zap.Int(FieldCount, val)
}

func Took(val time.Duration) zap.Field {
	return zap.Duration(FieldTook, val)
}

func Version(val string) zap.Field {
	return zap.String(FieldVersion, val)
}

func Address(val string) zapcore.Field {
	return zap.String(FieldAddress, val)
}

func Duration(val time.Time) zapcore.Field {
	return zap.Stringer(FieldDuration, stringer.Float64Stringer{Val: time.Since(val).Seconds()})
}
