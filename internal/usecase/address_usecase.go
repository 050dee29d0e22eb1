package usecase

import (
	"context"
	"strings"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type AddressInput struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type AddressUsecase struct {
	tx    repo.TransactionManager
	clock Clock
}

// DI
func NewAddressUsecase(tx repo.TransactionManager, clock Clock) *AddressUsecase {
	return &AddressUsecase{tx: tx, clock: clock}
}

func (u *AddressUsecase) List(ctx context.Context, c access.Caller) ([]model.Address, error) {
	if err := authorize(c, access.OpManageAddress); err != nil {
		return nil, err
	}
	var out []model.Address
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		list, err := r.Addresses().ListByUser(ctx, c.UserID)
		out = list
		return err
	})
	if err != nil {
		return nil, txFailure(err)
	}
	return nonNil(out), nil
}

func (u *AddressUsecase) Create(ctx context.Context, c access.Caller, in AddressInput) (model.Address, error) {
	if err := authorize(c, access.OpManageAddress); err != nil {
		return model.Address{}, err
	}
	in = trimAddress(in)
	//入力チェック
	if err := validateAddress(in); err != nil {
		return model.Address{}, err
	}

	now := u.clock.Now()
	a := model.Address{
		UserID:     c.UserID,
		Name:       in.Name,
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		Phone:      in.Phone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return fromRepo(r.Addresses().Create(ctx, &a), "address")
	})
	if err != nil {
		return model.Address{}, txFailure(err)
	}
	return a, nil
}

func (u *AddressUsecase) Update(ctx context.Context, c access.Caller, addressID int64, in AddressInput) error {
	if err := authorize(c, access.OpManageAddress); err != nil {
		return err
	}
	if addressID <= 0 {
		return validationError("invalid address id")
	}
	in = trimAddress(in)
	if err := validateAddress(in); err != nil {
		return err
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return fromRepo(r.Addresses().Update(ctx, c.UserID, model.Address{
			ID:         addressID,
			Name:       in.Name,
			Line1:      in.Line1,
			Line2:      in.Line2,
			City:       in.City,
			State:      in.State,
			PostalCode: in.PostalCode,
			Country:    in.Country,
			Phone:      in.Phone,
			UpdatedAt:  u.clock.Now(),
		}), "address")
	})
	return txFailure(err)
}

func (u *AddressUsecase) Delete(ctx context.Context, c access.Caller, addressID int64) error {
	if err := authorize(c, access.OpManageAddress); err != nil {
		return err
	}
	if addressID <= 0 {
		return validationError("invalid address id")
	}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文に使われた住所はErrReferencedで残る
		return fromRepo(r.Addresses().Delete(ctx, c.UserID, addressID), "address")
	})
	return txFailure(err)
}

// user内でdefaultは1つ
func (u *AddressUsecase) SetDefault(ctx context.Context, c access.Caller, addressID int64) error {
	if err := authorize(c, access.OpManageAddress); err != nil {
		return err
	}
	if addressID <= 0 {
		return validationError("invalid address id")
	}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return fromRepo(r.Addresses().SetDefault(ctx, c.UserID, addressID), "address")
	})
	return txFailure(err)
}

// 他人の住所は存在しない扱い
func ownAddress(ctx context.Context, r repo.TxRepos, userID, addressID int64) error {
	_, err := r.Addresses().FindOwned(ctx, userID, addressID)
	return fromRepo(err, "address")
}

func validateAddress(in AddressInput) error {
	if in.Name == "" || in.Line1 == "" || in.City == "" || in.PostalCode == "" || in.Country == "" {
		return validationError("name, line1, city, postal_code and country are required")
	}
	return nil
}

func trimAddress(in AddressInput) AddressInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Line1 = strings.TrimSpace(in.Line1)
	in.Line2 = strings.TrimSpace(in.Line2)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.Country = strings.TrimSpace(in.Country)
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}
