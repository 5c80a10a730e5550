/*
Package supply implements the owner balance check of a fixed-supply NEP-17
token. A token that mints its whole supply to the deploying account must
report the same value for `totalSupply` and for `balanceOf(owner)` until the
owner moves any tokens.
*/
package supply

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// ErrMismatch is returned when the owner balance differs from the total supply.
var ErrMismatch = errors.New("owner balance doesn't match total supply")

// Reader is the subset of NEP-17 methods needed for the check.
type Reader interface {
	TotalSupply() (*big.Int, error)
	BalanceOf(account util.Uint160) (*big.Int, error)
}

// OwnerReader is a Reader that can also tell the owner of the token.
type OwnerReader interface {
	Reader
	GetOwner() (util.Uint160, error)
}

// Report contains values read during the check.
type Report struct {
	Owner       util.Uint160
	TotalSupply *big.Int
	Balance     *big.Int
}

// Matches tells whether the owner balance is equal to the total supply.
func (r *Report) Matches() bool {
	return r.TotalSupply.Cmp(r.Balance) == 0
}

// Check reads the total supply and the balance of the owner and compares
// them. On mismatch a complete report is returned along with an error
// wrapping ErrMismatch, read failures return no report.
func Check(r Reader, owner util.Uint160) (*Report, error) {
	total, err := r.TotalSupply()
	if err != nil {
		return nil, fmt.Errorf("failed to get total supply: %w", err)
	}
	balance, err := r.BalanceOf(owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", address.Uint160ToString(owner), err)
	}

	rep := &Report{
		Owner:       owner,
		TotalSupply: total,
		Balance:     balance,
	}
	if !rep.Matches() {
		return rep, fmt.Errorf("%w: %s has %s, total supply is %s",
			ErrMismatch, address.Uint160ToString(owner), balance, total)
	}
	return rep, nil
}

// CheckOwner is the same as Check, but it takes the owner from the contract.
func CheckOwner(r OwnerReader) (*Report, error) {
	owner, err := r.GetOwner()
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	return Check(r, owner)
}
