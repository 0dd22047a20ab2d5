package execution

import (
	"math/big"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
)

func validateValue(value *big.Int, what string) result.Result {
	if value == nil || value.Sign() < 0 {
		return result.Error("Invalid %v: %v", what, value).WithErrorCode(result.CodeInvalidInput)
	}
	return result.OK
}

func validateAddress(addr common.Address, what string) result.Result {
	if addr.IsEmpty() {
		return result.Error("Missing %v", what).WithErrorCode(result.CodeInvalidInput)
	}
	return result.OK
}

func encodeID(id uint64) common.Bytes {
	return common.Bytes(common.Uint64ToBytes(id))
}

// userOrSender returns the explicit beneficiary, or the sender when none is given
func userOrSender(user, sender common.Address) common.Address {
	if user.IsEmpty() {
		return sender
	}
	return user
}
