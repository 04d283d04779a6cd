package token_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/xraph/bonding/token"
)

type MemorySuite struct {
	suite.Suite
	ctx    context.Context
	ledger *token.Memory
}

func TestMemorySuite(t *testing.T) {
	suite.Run(t, new(MemorySuite))
}

func (s *MemorySuite) SetupTest() {
	s.ctx = context.Background()
	s.ledger = token.NewMemory("")
	s.Require().NoError(s.ledger.Allocate("alice", 100))
}

func (s *MemorySuite) TestDefaultCustody() {
	s.Equal(token.DefaultCustody, s.ledger.Custody())
	s.Equal("vault", token.NewMemory("vault").Custody())
}

func (s *MemorySuite) TestTransferInSpendsAllowance() {
	s.ledger.Approve("alice", s.ledger.Custody(), 60)

	s.Require().NoError(s.ledger.TransferIn(s.ctx, "alice", 25))
	s.Equal(uint64(75), s.ledger.BalanceOf("alice"))
	s.Equal(uint64(25), s.ledger.BalanceOf(s.ledger.Custody()))
	s.Equal(uint64(35), s.ledger.Allowance("alice", s.ledger.Custody()))
}

func (s *MemorySuite) TestTransferInRequiresAllowance() {
	s.ledger.Approve("alice", s.ledger.Custody(), 10)

	s.ErrorIs(s.ledger.TransferIn(s.ctx, "alice", 11), token.ErrInsufficientAllowance)
	s.Equal(uint64(100), s.ledger.BalanceOf("alice"))
}

func (s *MemorySuite) TestTransferInRequiresFunds() {
	s.ledger.Approve("alice", s.ledger.Custody(), 1000)

	s.ErrorIs(s.ledger.TransferIn(s.ctx, "alice", 101), token.ErrInsufficientFunds)
	s.Equal(uint64(1000), s.ledger.Allowance("alice", s.ledger.Custody()))
}

func (s *MemorySuite) TestTransferOut() {
	s.ledger.Approve("alice", s.ledger.Custody(), 100)
	s.Require().NoError(s.ledger.TransferIn(s.ctx, "alice", 40))

	s.Require().NoError(s.ledger.TransferOut(s.ctx, "bob", 15))
	s.Equal(uint64(15), s.ledger.BalanceOf("bob"))
	s.Equal(uint64(25), s.ledger.BalanceOf(s.ledger.Custody()))

	s.ErrorIs(s.ledger.TransferOut(s.ctx, "bob", 26), token.ErrInsufficientFunds)
}

func (s *MemorySuite) TestZeroTransfersAreNoOps() {
	s.NoError(s.ledger.TransferIn(s.ctx, "nobody", 0))
	s.NoError(s.ledger.TransferOut(s.ctx, "nobody", 0))
}

func (s *MemorySuite) TestAllocateOverflow() {
	s.ErrorIs(s.ledger.Allocate("alice", ^uint64(0)), token.ErrInvalidAmount)
}
