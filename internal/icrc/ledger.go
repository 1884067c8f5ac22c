package icrc

import (
	"context"
	"fmt"

	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/apperror"
	"github.com/vaultic/shroff/internal/logger"
)

// Ledger is a client for one ICRC token ledger canister.
type Ledger struct {
	agent    agent.Agent
	canister agent.Principal
	log      logger.LoggerInterface
}

// NewLedger creates a ledger client for the given canister.
func NewLedger(a agent.Agent, canister agent.Principal, log logger.LoggerInterface) *Ledger {
	return &Ledger{agent: a, canister: canister, log: log}
}

// Canister returns the ledger canister principal.
func (l *Ledger) Canister() agent.Principal {
	return l.canister
}

// BalanceOf returns the balance of an account in raw token units.
func (l *Ledger) BalanceOf(ctx context.Context, account Account) (uint64, error) {
	var balance uint64
	if err := l.agent.Query(ctx, l.canister, "icrc1_balance_of", account.wire(), &balance); err != nil {
		return 0, fmt.Errorf("icrc: balance_of %s: %w", account, err)
	}
	return balance, nil
}

// Transfer moves tokens and returns the ledger block index.
func (l *Ledger) Transfer(ctx context.Context, args TransferArgs) (uint64, error) {
	wire := wireTransferArgs{
		To:             args.To.wire(),
		Amount:         args.Amount,
		Fee:            args.Fee,
		Memo:           args.Memo,
		FromSubaccount: args.FromSubaccount,
		CreatedAtTime:  args.CreatedAtTime,
	}

	var result ledgerResult
	if err := l.agent.Call(ctx, l.canister, "icrc1_transfer", wire, &result); err != nil {
		return 0, apperror.New(apperror.CodeLedgerTransferFail,
			apperror.WithContext(l.canister.Text()), apperror.WithCause(err))
	}
	if result.Err != nil {
		l.log.Warn(ctx, "ledger rejected transfer",
			"ledger", l.canister.Text(), "to", args.To.String(),
			"amount", args.Amount, "reason", result.Err.String())
		return 0, apperror.New(apperror.CodeLedgerTransferFail,
			apperror.WithContext(fmt.Sprintf("%s: %s", l.canister.Text(), result.Err)))
	}
	if result.Ok == nil {
		return 0, apperror.New(apperror.CodeLedgerTransferFail,
			apperror.WithContext(l.canister.Text()+": empty reply"))
	}

	l.log.Debug(ctx, "transfer confirmed",
		"ledger", l.canister.Text(), "to", args.To.String(),
		"amount", args.Amount, "block", *result.Ok)
	return *result.Ok, nil
}

// Approve grants a spender an allowance and returns the block index.
func (l *Ledger) Approve(ctx context.Context, args ApproveArgs) (uint64, error) {
	wire := wireApproveArgs{
		Spender:   args.Spender.wire(),
		Amount:    args.Amount,
		ExpiresAt: args.ExpiresAt,
		Fee:       args.Fee,
	}

	var result ledgerResult
	if err := l.agent.Call(ctx, l.canister, "icrc2_approve", wire, &result); err != nil {
		return 0, apperror.New(apperror.CodeLedgerApproveFail,
			apperror.WithContext(l.canister.Text()), apperror.WithCause(err))
	}
	if result.Err != nil {
		l.log.Warn(ctx, "ledger rejected approval",
			"ledger", l.canister.Text(), "spender", args.Spender.String(),
			"amount", args.Amount, "reason", result.Err.String())
		return 0, apperror.New(apperror.CodeLedgerApproveFail,
			apperror.WithContext(fmt.Sprintf("%s: %s", l.canister.Text(), result.Err)))
	}
	if result.Ok == nil {
		return 0, apperror.New(apperror.CodeLedgerApproveFail,
			apperror.WithContext(l.canister.Text()+": empty reply"))
	}
	return *result.Ok, nil
}

// Allowance returns the amount a spender may still pull from an account.
func (l *Ledger) Allowance(ctx context.Context, account, spender Account) (uint64, error) {
	args := wireAllowanceArgs{Account: account.wire(), Spender: spender.wire()}

	var reply wireAllowance
	if err := l.agent.Query(ctx, l.canister, "icrc2_allowance", args, &reply); err != nil {
		return 0, fmt.Errorf("icrc: allowance %s: %w", l.canister.Text(), err)
	}
	return reply.Allowance, nil
}

// SupportedStandards returns the standards the ledger advertises.
func (l *Ledger) SupportedStandards(ctx context.Context) ([]Standard, error) {
	var standards []Standard
	if err := l.agent.Query(ctx, l.canister, "icrc1_supported_standards", nil, &standards); err != nil {
		return nil, fmt.Errorf("icrc: supported_standards %s: %w", l.canister.Text(), err)
	}
	return standards, nil
}

// SupportsICRC2 reports whether the ledger implements the approve flow.
// A probe failure counts as unsupported so callers fall back to plain
// transfers.
func (l *Ledger) SupportsICRC2(ctx context.Context) bool {
	standards, err := l.SupportedStandards(ctx)
	if err != nil {
		l.log.Debug(ctx, "standards probe failed, assuming no ICRC-2",
			"ledger", l.canister.Text(), "error", err)
		return false
	}
	for _, s := range standards {
		if s.Name == StandardICRC2 {
			return true
		}
	}
	return false
}
