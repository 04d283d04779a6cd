package mongo

import (
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/bonding/account"
	"github.com/xraph/bonding/types"
)

type accountModel struct {
	grove.BaseModel `grove:"table:bonding_accounts"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	Holder    string    `grove:"holder"     bson:"holder"`
	Provider  string    `grove:"provider"   bson:"provider"`
	Specifier string    `grove:"specifier"  bson:"specifier"`
	Bonded    int64     `grove:"bonded"     bson:"bonded"`
	ValueHeld int64     `grove:"value_held" bson:"value_held"`
	Escrowed  int64     `grove:"escrowed"   bson:"escrowed"`
	Issued    int64     `grove:"issued"     bson:"issued"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

// docID is the hex form of account.Key.Encode. The raw encoding is not
// valid UTF-8, which BSON strings require.
func docID(key account.Key) string {
	return hex.EncodeToString(key.Encode())
}

// toAccountModel maps an account to a document. BSON has no unsigned 64-bit
// integer, so balances above math.MaxInt64 are refused.
func toAccountModel(a *account.Account) (*accountModel, error) {
	m := &accountModel{
		ID:        docID(a.Key),
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
			return nil, fmt.Errorf("bonding/mongo: %s %d of %s exceeds int64", f.name, f.src, a.Key)
		}
		*f.dst = int64(f.src)
	}
	return m, nil
}

func fromAccountModel(m *accountModel) (*account.Account, error) {
	for _, v := range []int64{m.Bonded, m.ValueHeld, m.Escrowed, m.Issued} {
		if v < 0 {
			return nil, fmt.Errorf("bonding/mongo: negative balance in %s", m.ID)
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
