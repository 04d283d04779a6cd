package sqlite

import (
	"fmt"
	"math"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/bonding/account"
	"github.com/xraph/bonding/types"
)

type accountModel struct {
	grove.BaseModel `grove:"table:bonding_accounts"`

	Holder    string    `grove:"holder,pk"`
	Provider  string    `grove:"provider,pk"`
	Specifier string    `grove:"specifier,pk"`
	Bonded    int64     `grove:"bonded"`
	ValueHeld int64     `grove:"value_held"`
	Escrowed  int64     `grove:"escrowed"`
	Issued    int64     `grove:"issued"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

// toAccountModel maps an account to a row. Balances are BIGINT columns, so
// values above math.MaxInt64 are refused.
func toAccountModel(a *account.Account) (*accountModel, error) {
	m := &accountModel{
		Holder:    a.Key.Holder,
		Provider:  a.Key.Provider,
		Specifier: a.Key.Specifier,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	for _, f := range []struct {
		name string
		src  uint64
		dst  *int64
	}{
		{"bonded", a.Bonded, &m.Bonded},
		{"value_held", a.ValueHeld, &m.ValueHeld},
		{"escrowed", a.Escrowed, &m.Escrowed},
		{"issued", a.Issued, &m.Issued},
	} {
		if f.src > math.MaxInt64 {
			return nil, fmt.Errorf("bonding/sqlite: %s %d of %s exceeds column range", f.name, f.src, a.Key)
		}
		*f.dst = int64(f.src)
	}
	return m, nil
}

func fromAccountModel(m *accountModel) (*account.Account, error) {
	for _, v := range []int64{m.Bonded, m.ValueHeld, m.Escrowed, m.Issued} {
		if v < 0 {
			return nil, fmt.Errorf("bonding/sqlite: negative balance for %s:%s:%s", m.Holder, m.Provider, m.Specifier)
		}
	}
	return &account.Account{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Key:       account.NewKey(m.Holder, m.Provider, m.Specifier),
		Bonded:    uint64(m.Bonded),
		ValueHeld: uint64(m.ValueHeld),
		Escrowed:  uint64(m.Escrowed),
		Issued:    uint64(m.Issued),
	}, nil
}
