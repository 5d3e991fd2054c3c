package cmd

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/w3mint/internal/contract"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

// devNode is an in-memory JSON-RPC node hosting one multi-asset token.
type devNode struct {
	t   *testing.T
	abi abi.ABI

	mu       sync.Mutex
	token    common.Address
	name     string
	symbol   string
	decimals uint8
	balances map[contract.B256]*big.Int
	nonces   map[common.Address]uint64
	receipts map[common.Hash]uint64
	revert   bool
	mints    []*big.Int
}

func newDevNode(t *testing.T, token common.Address) (*devNode, *httptest.Server) {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(contract.MultiAssetTokenABI))
	require.NoError(t, err)

	n := &devNode{
		t:        t,
		abi:      parsed,
		token:    token,
		name:     "Dhai Token",
		symbol:   "DHAI",
		decimals: 6,
		balances: make(map[contract.B256]*big.Int),
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]uint64),
	}
	srv := httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(srv.Close)
	return n, srv
}

func (n *devNode) balance(owner contract.B256) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if b, ok := n.balances[owner]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (n *devNode) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     int64             `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	result, rpcErr := n.handle(req.Method, req.Params)
	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != "" {
		resp["error"] = map[string]any{"code": -32000, "message": rpcErr}
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

func (n *devNode) handle(method string, params []json.RawMessage) (any, string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch method {
	case "eth_chainId":
		return "0x7a69", ""
	case "eth_blockNumber":
		return "0x1", ""
	case "eth_gasPrice":
		return "0x3b9aca00", ""
	case "eth_maxPriorityFeePerGas":
		return "0x5f5e100", ""
	case "eth_estimateGas":
		return "0xd6d8", ""
	case "eth_getBalance":
		return "0xde0b6b3a7640000", ""
	case "eth_getTransactionCount":
		var addr common.Address
		json.Unmarshal(params[0], &addr) //nolint:errcheck
		return hexutil.EncodeUint64(n.nonces[addr]), ""

	case "eth_call":
		var call struct {
			To   common.Address `json:"to"`
			Data hexutil.Bytes  `json:"data"`
		}
		if err := json.Unmarshal(params[0], &call); err != nil {
			return nil, err.Error()
		}
		return n.call(call.Data)

	case "eth_sendRawTransaction":
		var raw hexutil.Bytes
		json.Unmarshal(params[0], &raw) //nolint:errcheck
		return n.send(raw)

	case "eth_getTransactionReceipt":
		var hash common.Hash
		json.Unmarshal(params[0], &hash) //nolint:errcheck
		status, ok := n.receipts[hash]
		if !ok {
			return nil, ""
		}
		return map[string]any{
			"transactionHash": hash.Hex(),
			"status":          hexutil.EncodeUint64(status),
			"blockNumber":     "0x1",
			"gasUsed":         "0xc350",
		}, ""
	}
	return nil, "method not found"
}

func (n *devNode) call(data []byte) (any, string) {
	m, err := n.abi.MethodById(data[:4])
	if err != nil {
		return nil, err.Error()
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err.Error()
	}

	var out []byte
	switch m.Name {
	case "name":
		out, err = m.Outputs.Pack(n.name)
	case "symbol":
		out, err = m.Outputs.Pack(n.symbol)
	case "decimals":
		out, err = m.Outputs.Pack(n.decimals)
	case "balanceOf":
		owner := contract.B256(args[0].([32]byte))
		bal := n.balances[owner]
		if bal == nil {
			bal = new(big.Int)
		}
		out, err = m.Outputs.Pack(bal)
	case "totalSupply":
		supply := new(big.Int)
		for _, b := range n.balances {
			supply.Add(supply, b)
		}
		out, err = m.Outputs.Pack(supply)
	default:
		return nil, "unsupported call " + m.Name
	}
	if err != nil {
		return nil, err.Error()
	}
	return hexutil.Encode(out), ""
}

func (n *devNode) send(raw []byte) (any, string) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, err.Error()
	}
	from, err := types.Sender(types.NewLondonSigner(tx.ChainId()), tx)
	if err != nil {
		return nil, err.Error()
	}
	n.nonces[from]++

	status := uint64(1)
	if n.revert {
		status = 0
	} else if tx.To() != nil && *tx.To() == n.token {
		m, err := n.abi.MethodById(tx.Data()[:4])
		if err != nil || m.Name != "mint" {
			return nil, "unsupported tx"
		}
		args, err := m.Inputs.Unpack(tx.Data()[4:])
		if err != nil {
			return nil, err.Error()
		}
		to := contract.B256(args[0].([32]byte))
		amount := args[2].(*big.Int)
		if n.balances[to] == nil {
			n.balances[to] = new(big.Int)
		}
		n.balances[to].Add(n.balances[to], amount)
		n.mints = append(n.mints, amount)
	}
	n.receipts[tx.Hash()] = status
	return tx.Hash().Hex(), ""
}
