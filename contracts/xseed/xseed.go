/*
Package xseed contains XSeedToken, a NEP-17 fungible token contract.

The whole fixed supply is minted to the account deploying the contract, so
right after deployment the deployer's balance equals the total supply. The
supply never changes afterwards, transfers only move it between accounts.

# Contract notifications

Transfer notification. This is a NEP-17 standard notification, it's emitted
on every transfer and once on deployment (with null sender) for the initial
mint.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package xseed

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

/*
Contract storage model.

 - 'o' -> interop.Hash160
   contract owner, the sender of the deployment transaction
 - 's' -> int
   total supply, written once on deployment
 - 'b' + interop.Hash160 -> int
   account balance, missing key means zero balance
*/

const (
	symbol     = "XSEED"
	decimals   = 8
	multiplier = 100_000_000

	// initialSupply is the amount of tokens minted to the owner on deployment.
	initialSupply = 1_000_000_000 * multiplier

	ownerKey      = "o"
	supplyKey     = "s"
	balancePrefix = 'b'
)

func _deploy(_ any, isUpdate bool) {
	if isUpdate {
		return
	}

	tx := runtime.GetScriptContainer()
	owner := tx.Sender
	ctx := storage.GetContext()

	storage.Put(ctx, ownerKey, owner)
	storage.Put(ctx, supplyKey, initialSupply)
	storage.Put(ctx, balanceKey(owner), initialSupply)

	var from interop.Hash160
	runtime.Notify("Transfer", from, owner, initialSupply)
}

// Symbol returns the token symbol.
func Symbol() string {
	return symbol
}

// Decimals returns the number of decimals used by the token.
func Decimals() int {
	return decimals
}

// TotalSupply returns the total amount of tokens ever issued.
func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	return getIntFromDB(ctx, []byte(supplyKey))
}

// BalanceOf returns the token balance of the given account.
func BalanceOf(account interop.Hash160) int {
	if len(account) != interop.Hash160Len {
		panic("invalid account")
	}
	ctx := storage.GetReadOnlyContext()
	return getIntFromDB(ctx, balanceKey(account))
}

// Transfer moves amount of tokens from one account to another. It returns
// false if the sender is not witnessed or doesn't have enough tokens.
func Transfer(from, to interop.Hash160, amount int, data any) bool {
	if len(from) != interop.Hash160Len {
		panic("invalid 'from' address")
	}
	if len(to) != interop.Hash160Len {
		panic("invalid 'to' address")
	}
	if amount < 0 {
		panic("negative amount")
	}

	if !isUsableAddress(from) {
		return false
	}

	ctx := storage.GetContext()
	fromKey := balanceKey(from)
	amountFrom := getIntFromDB(ctx, fromKey)
	if amountFrom < amount {
		return false
	}

	if amount != 0 && !from.Equals(to) {
		if amountFrom == amount {
			storage.Delete(ctx, fromKey)
		} else {
			storage.Put(ctx, fromKey, amountFrom-amount)
		}

		toKey := balanceKey(to)
		storage.Put(ctx, toKey, getIntFromDB(ctx, toKey)+amount)
	}

	runtime.Notify("Transfer", from, to, amount)
	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}
	return true
}

// GetOwner returns the account that has deployed the contract.
func GetOwner() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, ownerKey).(interop.Hash160)
}

// Update updates the contract code and manifest, it must be witnessed by the
// contract owner.
func Update(nef []byte, manifest string, data any) {
	if !runtime.CheckWitness(GetOwner()) {
		panic("not witnessed by owner")
	}
	management.UpdateWithData(nef, []byte(manifest), data)
}

// isUsableAddress checks whether the address has witnessed the invocation or
// is the calling contract itself.
func isUsableAddress(addr interop.Hash160) bool {
	if runtime.CheckWitness(addr) {
		return true
	}
	callingScriptHash := runtime.GetCallingScriptHash()
	return callingScriptHash.Equals(addr)
}

// getIntFromDB returns zero for a missing key.
func getIntFromDB(ctx storage.Context, key []byte) int {
	var res int
	val := storage.Get(ctx, key)
	if val != nil {
		res = val.(int)
	}
	return res
}

func balanceKey(account interop.Hash160) []byte {
	return append([]byte{balancePrefix}, account...)
}
