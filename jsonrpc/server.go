package jsonrpc

import (
	"context"
	"net/http"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/holiman/uint256"

	"rewardledger/errors"
	"rewardledger/exception"
	"rewardledger/interfaces"
	"rewardledger/jsonx"
	"rewardledger/logx"
	"rewardledger/types"
)

// --- Error type used by handlers ---

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func toJRPC2Error(e *rpcError) error {
	if e == nil {
		return nil
	}
	var ledgerError errors.LedgerError
	err := jsonx.Unmarshal([]byte(e.Message), &ledgerError)
	if err == nil && ledgerError.Code != "" {
		return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", ledgerError.Message).WithData(ledgerError)
	}
	return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", e.Message)
}

func fromLedgerError(err error) *rpcError {
	code := -32000
	switch errors.CodeOf(err) {
	case errors.ErrCodeUnauthorized:
		code = -32001
	case errors.ErrCodeUnderflow:
		code = -32002
	case errors.ErrCodeOverflow:
		code = -32003
	case errors.ErrCodeInvalidAccount:
		code = -32004
	case errors.ErrCodeNoOp:
		code = -32005
	case errors.ErrCodeStaleAccumulator:
		code = -32006
	}
	return &rpcError{Code: code, Message: err.Error()}
}

// --- Params/Results ---

// DistributorAccountName selects the distributor aggregate in account
// parameters. Depositor addresses are hex strings, so the name cannot
// shadow one.
const DistributorAccountName = "distributor"

type getBalanceRequest struct {
	Account string `json:"account"`
}

type getBalanceResponse struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

type getTotalRewardsResponse struct {
	TotalRewards    string `json:"total_rewards"`
	RewardPerToken  string `json:"reward_per_token"`
	LastUpdateBlock uint64 `json:"last_update_block"`
}

type getCheckpointRequest struct {
	Account string `json:"account"`
}

type getCheckpointResponse struct {
	Account            string `json:"account"`
	AccruedReward      string `json:"accrued_reward"`
	RewardPerTokenPaid string `json:"reward_per_token_paid"`
	OptedOut           bool   `json:"opted_out"`
}

type refreshCheckpointRequest struct {
	Account string `json:"account"`
}

type refreshCheckpointsRequest struct {
	AccountA string `json:"account_a"`
	AccountB string `json:"account_b"`
}

type refreshCheckpointsResponse struct {
	AOptedOut bool `json:"a_opted_out"`
	BOptedOut bool `json:"b_opted_out"`
}

type reportRewardsRequest struct {
	Caller       string `json:"caller"`
	TotalRewards string `json:"total_rewards"`
	BlockNumber  uint64 `json:"block_number"`
}

type claimRequest struct {
	Caller  string `json:"caller"`
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type transferRequest struct {
	Sender      string `json:"sender"`
	Recipient   string `json:"recipient"`
	Amount      string `json:"amount"`
	BlockNumber uint64 `json:"block_number"`
}

type setOptedOutRequest struct {
	Caller   string `json:"caller"`
	Account  string `json:"account"`
	OptedOut bool   `json:"opted_out"`
}

type setProtocolFeeRequest struct {
	Caller string `json:"caller"`
	Fee    uint64 `json:"fee"`
}

type setProtocolFeeRecipientRequest struct {
	Caller    string `json:"caller"`
	Recipient string `json:"recipient"`
}

type ackResponse struct {
	Ok bool `json:"ok"`
}

// --- Server ---

type Server struct {
	addr         string
	maxBodyBytes int64
	svc          interfaces.RewardService
}

func NewServer(addr string, maxBodyBytes int64, svc interfaces.RewardService) *Server {
	return &Server{
		addr:         addr,
		maxBodyBytes: maxBodyBytes,
		svc:          svc,
	}
}

func (s *Server) Start() {
	methods := s.buildMethodMap()
	jh := jhttp.NewBridge(methods, &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})

	mux := http.NewServeMux()
	mux.Handle("/", http.MaxBytesHandler(jh, s.maxBodyBytes))

	exception.SafeGoWithPanic("jsonrpc-server", func() {
		logx.Info("JSONRPC", "Serving reward ledger RPC on ", s.addr)
		if err := http.ListenAndServe(s.addr, mux); err != nil {
			logx.Error("JSONRPC", "Server stopped: ", err)
		}
	})
}

func parseAccount(name string) (types.Account, *rpcError) {
	if name == DistributorAccountName {
		return types.DistributorAccount(), nil
	}
	account := types.RealAccount(name)
	if !account.Valid() {
		return account, fromLedgerError(errors.NewError(errors.ErrCodeInvalidAccount, errors.ErrMsgInvalidAccount))
	}
	return account, nil
}

func parseAmount(amount string) (*uint256.Int, *rpcError) {
	value, err := uint256.FromDecimal(amount)
	if err != nil {
		return nil, &rpcError{Code: -32602, Message: "invalid decimal amount"}
	}
	return value, nil
}

// Build jrpc2 method map
func (s *Server) buildMethodMap() handler.Map {
	return handler.Map{
		"reward.getbalance": handler.New(func(ctx context.Context, p getBalanceRequest) (*getBalanceResponse, error) {
			res, err := s.rpcGetBalance(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"reward.gettotalrewards": handler.New(func(ctx context.Context) (*getTotalRewardsResponse, error) {
			res, err := s.rpcGetTotalRewards()
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"reward.getcheckpoint": handler.New(func(ctx context.Context, p getCheckpointRequest) (*getCheckpointResponse, error) {
			res, err := s.rpcGetCheckpoint(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"reward.refreshcheckpoint": handler.New(func(ctx context.Context, p refreshCheckpointRequest) (*ackResponse, error) {
			res, err := s.rpcRefreshCheckpoint(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"reward.refreshcheckpoints": handler.New(func(ctx context.Context, p refreshCheckpointsRequest) (*refreshCheckpointsResponse, error) {
			res, err := s.rpcRefreshCheckpoints(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"reward.reportrewards": handler.New(func(ctx context.Context, p reportRewardsRequest) (*ackResponse, error) {
			res, err := s.rpcReportRewards(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"reward.claim": handler.New(func(ctx context.Context, p claimRequest) (*ackResponse, error) {
			res, err := s.rpcClaim(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"reward.transfer": handler.New(func(ctx context.Context, p transferRequest) (*ackResponse, error) {
			res, err := s.rpcTransfer(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"reward.setoptedout": handler.New(func(ctx context.Context, p setOptedOutRequest) (*ackResponse, error) {
			res, err := s.rpcSetOptedOut(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"reward.setprotocolfee": handler.New(func(ctx context.Context, p setProtocolFeeRequest) (*ackResponse, error) {
			res, err := s.rpcSetProtocolFee(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"reward.setprotocolfeerecipient": handler.New(func(ctx context.Context, p setProtocolFeeRecipientRequest) (*ackResponse, error) {
			res, err := s.rpcSetProtocolFeeRecipient(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
	}
}

func (s *Server) rpcGetBalance(p getBalanceRequest) (*getBalanceResponse, *rpcError) {
	account, rpcErr := parseAccount(p.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	balance, err := s.svc.BalanceOf(account)
	if err != nil {
		return nil, fromLedgerError(err)
	}
	return &getBalanceResponse{Account: p.Account, Balance: balance.Dec()}, nil
}

func (s *Server) rpcGetTotalRewards() (*getTotalRewardsResponse, *rpcError) {
	state, err := s.svc.AccumulatorState()
	if err != nil {
		return nil, fromLedgerError(err)
	}
	return &getTotalRewardsResponse{
		TotalRewards:    state.TotalRewards.Dec(),
		RewardPerToken:  state.RewardPerToken.Dec(),
		LastUpdateBlock: state.LastUpdateBlock,
	}, nil
}

func (s *Server) rpcGetCheckpoint(p getCheckpointRequest) (*getCheckpointResponse, *rpcError) {
	account, rpcErr := parseAccount(p.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	cp, err := s.svc.GetCheckpoint(account)
	if err != nil {
		return nil, fromLedgerError(err)
	}
	return &getCheckpointResponse{
		Account:            p.Account,
		AccruedReward:      cp.AccruedReward.Dec(),
		RewardPerTokenPaid: cp.RewardPerTokenPaid.Dec(),
		OptedOut:           cp.OptedOut,
	}, nil
}

func (s *Server) rpcRefreshCheckpoint(p refreshCheckpointRequest) (*ackResponse, *rpcError) {
	account, rpcErr := parseAccount(p.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.svc.RefreshCheckpoint(account); err != nil {
		return nil, fromLedgerError(err)
	}
	return &ackResponse{Ok: true}, nil
}

func (s *Server) rpcRefreshCheckpoints(p refreshCheckpointsRequest) (*refreshCheckpointsResponse, *rpcError) {
	accountA, rpcErr := parseAccount(p.AccountA)
	if rpcErr != nil {
		return nil, rpcErr
	}
	accountB, rpcErr := parseAccount(p.AccountB)
	if rpcErr != nil {
		return nil, rpcErr
	}
	aOptedOut, bOptedOut, err := s.svc.RefreshCheckpoints(accountA, accountB)
	if err != nil {
		return nil, fromLedgerError(err)
	}
	return &refreshCheckpointsResponse{AOptedOut: aOptedOut, BOptedOut: bOptedOut}, nil
}

func (s *Server) rpcReportRewards(p reportRewardsRequest) (*ackResponse, *rpcError) {
	totalRewards, rpcErr := parseAmount(p.TotalRewards)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.svc.ReportTotalRewards(p.Caller, totalRewards, p.BlockNumber); err != nil {
		return nil, fromLedgerError(err)
	}
	return &ackResponse{Ok: true}, nil
}

func (s *Server) rpcClaim(p claimRequest) (*ackResponse, *rpcError) {
	account, rpcErr := parseAccount(p.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount(p.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.svc.Claim(p.Caller, account, amount); err != nil {
		return nil, fromLedgerError(err)
	}
	return &ackResponse{Ok: true}, nil
}

func (s *Server) rpcTransfer(p transferRequest) (*ackResponse, *rpcError) {
	amount, rpcErr := parseAmount(p.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.svc.Transfer(p.Sender, p.Recipient, amount, p.BlockNumber); err != nil {
		return nil, fromLedgerError(err)
	}
	return &ackResponse{Ok: true}, nil
}

func (s *Server) rpcSetOptedOut(p setOptedOutRequest) (*ackResponse, *rpcError) {
	account, rpcErr := parseAccount(p.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.svc.SetOptedOut(p.Caller, account, p.OptedOut); err != nil {
		return nil, fromLedgerError(err)
	}
	return &ackResponse{Ok: true}, nil
}

func (s *Server) rpcSetProtocolFee(p setProtocolFeeRequest) (*ackResponse, *rpcError) {
	if err := s.svc.SetProtocolFee(p.Caller, p.Fee); err != nil {
		return nil, fromLedgerError(err)
	}
	return &ackResponse{Ok: true}, nil
}

func (s *Server) rpcSetProtocolFeeRecipient(p setProtocolFeeRecipientRequest) (*ackResponse, *rpcError) {
	if err := s.svc.SetProtocolFeeRecipient(p.Caller, p.Recipient); err != nil {
		return nil, fromLedgerError(err)
	}
	return &ackResponse{Ok: true}, nil
}
