package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"branch-ledger/internal/domain"
	apperrors "branch-ledger/internal/errors"
)

type JournalTestSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *sql.DB
	journal   *PostgresJournal
}

func (s *JournalTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("branch_ledger"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("password"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err, "start postgres container")
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.Require().NoError(RunMigrations(dsn))
	// A second run must be a no-op.
	s.Require().NoError(RunMigrations(dsn))

	db, err := sql.Open("postgres", dsn)
	s.Require().NoError(err)
	s.db = db
	s.journal = NewPostgresJournal(NewStore(db, discardLogger()), discardLogger())
}

func (s *JournalTestSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		s.container.Terminate(context.Background())
	}
}

func (s *JournalTestSuite) SetupTest() {
	_, err := s.db.Exec(`TRUNCATE transactions, accounts, customers`)
	s.Require().NoError(err)
}

func (s *JournalTestSuite) TestSaveAndRestore() {
	ctx := context.Background()

	owner, err := domain.NewCustomer("12345678900", "Maria Silva", time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), "Rua A, 10")
	s.Require().NoError(err)
	s.Require().NoError(s.journal.SaveCustomer(ctx, owner))

	acc := domain.OpenCheckingAccount(owner, 1, domain.WithPolicy(domain.CheckingPolicy{
		Limit:          decimal.NewFromInt(800),
		MaxWithdrawals: 5,
		Window:         domain.WindowDaily,
	}))
	owner.AddAccount(acc)
	s.Require().NoError(s.journal.SaveAccount(ctx, acc))

	for _, tx := range []domain.Transaction{
		domain.Deposit(decimal.RequireFromString("1000.50")),
		domain.Withdrawal(decimal.RequireFromString("200.25")),
		domain.Deposit(decimal.RequireFromString("0.75")),
	} {
		entry, err := owner.ApplyTransaction(acc, tx)
		s.Require().NoError(err)
		s.Require().NoError(s.journal.SaveTransaction(ctx, acc, entry))
	}

	reg := NewMemoryRegistry(discardLogger())
	s.Require().NoError(s.journal.Restore(ctx, reg))

	restoredOwner, err := reg.FindCustomerByID("12345678900")
	s.Require().NoError(err)
	s.Equal("Maria Silva", restoredOwner.Name())
	s.True(restoredOwner.BirthDate().Equal(owner.BirthDate()))

	restored, err := restoredOwner.PrimaryAccount()
	s.Require().NoError(err)
	s.Equal(int64(1), restored.Number())
	s.True(decimal.RequireFromString("801.00").Equal(restored.Balance()), "balance %s", restored.Balance())

	policy, ok := restored.Policy().(domain.CheckingPolicy)
	s.Require().True(ok)
	s.True(decimal.NewFromInt(800).Equal(policy.Limit))
	s.Equal(5, policy.MaxWithdrawals)
	s.Equal(domain.WindowDaily, policy.Window)

	want := acc.History().Entries()
	got := restored.History().Entries()
	s.Require().Len(got, len(want))
	for i := range want {
		s.Equal(want[i].ID, got[i].ID)
		s.Equal(want[i].Kind, got[i].Kind)
		s.True(want[i].Amount.Equal(got[i].Amount))
		s.WithinDuration(want[i].RecordedAt, got[i].RecordedAt, time.Millisecond)
	}

	s.Equal(int64(2), reg.NextAccountNumber())
}

func (s *JournalTestSuite) TestDuplicates() {
	ctx := context.Background()

	owner, err := domain.NewCustomer("555", "Joao", time.Date(1970, 2, 3, 0, 0, 0, 0, time.UTC), "")
	s.Require().NoError(err)
	s.Require().NoError(s.journal.SaveCustomer(ctx, owner))
	s.ErrorIs(s.journal.SaveCustomer(ctx, owner), apperrors.ErrDuplicateCustomer)

	acc := domain.OpenCheckingAccount(owner, 7)
	s.Require().NoError(s.journal.SaveAccount(ctx, acc))
	s.ErrorIs(s.journal.SaveAccount(ctx, acc), apperrors.ErrDuplicateAccount)
}

func (s *JournalTestSuite) TestFailedTransactionRollsBack() {
	ctx := context.Background()

	owner, err := domain.NewCustomer("777", "Ana", time.Date(1970, 2, 3, 0, 0, 0, 0, time.UTC), "")
	s.Require().NoError(err)
	s.Require().NoError(s.journal.SaveCustomer(ctx, owner))

	// The account was never saved, so the balance update finds no row.
	acc := domain.OpenCheckingAccount(owner, 9)
	entry, err := owner.ApplyTransaction(acc, domain.Deposit(decimal.NewFromInt(10)))
	s.Require().NoError(err)

	err = s.journal.SaveTransaction(ctx, acc, entry)
	s.ErrorIs(err, apperrors.ErrAccountNotFound)

	var count int
	s.Require().NoError(s.db.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&count))
	s.Equal(0, count)
}

func TestJournalTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	suite.Run(t, new(JournalTestSuite))
}
