package contract

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// ZeroBytes32 is the all-zero sub-id of the contract's default asset.
var ZeroBytes32 [32]byte

// AssetID identifies one fungible asset issued by a multi-asset contract.
type AssetID [32]byte

// NewAssetID derives the asset identifier for (contract, subID) as
// keccak256(leftPad32(contract) ‖ subID), matching the contract's own
// derivation.
func NewAssetID(contract common.Address, subID [32]byte) AssetID {
	h := sha3.NewLegacyKeccak256()
	h.Write(Bits(contract).Bytes())
	h.Write(subID[:])
	var id AssetID
	copy(id[:], h.Sum(nil))
	return id
}

// Hex returns the 0x-prefixed hex form.
func (a AssetID) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a AssetID) String() string { return a.Hex() }

// B256 is a 32-byte address word.
type B256 [32]byte

// Bytes returns the word as a slice.
func (b B256) Bytes() []byte { return b[:] }

// Hex returns the 0x-prefixed hex form.
func (b B256) Hex() string { return "0x" + hex.EncodeToString(b[:]) }

// Bits left-pads a 20-byte EVM address into a 32-byte word.
func Bits(addr common.Address) B256 {
	var b B256
	copy(b[12:], addr.Bytes())
	return b
}

// Address is the {bits} payload of an address identity.
type Address struct {
	Bits B256
}

// Identity is a mint recipient: {Address: {bits}}.
type Identity struct {
	Address *Address
}

// AddressIdentity wraps a 32-byte address word as an Identity.
func AddressIdentity(bits B256) Identity {
	return Identity{Address: &Address{Bits: bits}}
}
