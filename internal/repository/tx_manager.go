package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Users() UserRepository
	Organizations() OrganizationRepository
	Products() ProductRepository
	Variants() VariantRepository
	Categories() CategoryRepository
	Logos() LogoRepository
	Placements() PlacementRepository
	Customizations() CustomizationRepository
	CartItems() CartItemRepository
	Orders() OrderRepository
	OrderNotes() OrderNoteRepository
	AuditLogs() AuditLogRepository
	Addresses() AddressRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがerrorを返したらrollback、nilならcommit
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
