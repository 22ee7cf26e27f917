package schema

import "time"

// UserWallet represents the user_wallets table - wallets linked to discord accounts
type UserWallet struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	DiscordID     string    `gorm:"column:discord_id;not null;type:varchar(32)"`
	WalletAddress string    `gorm:"column:wallet_address;not null;type:varchar(64)"`
	ConnectedAt   time.Time `gorm:"column:connected_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the UserWallet model
func (UserWallet) TableName() string {
	return "user_wallets"
}

// UserRole represents the user_roles table. Only the discord profile is read here.
type UserRole struct {
	DiscordID   string    `gorm:"column:discord_id;primaryKey;type:varchar(32)"`
	DiscordName *string   `gorm:"column:discord_name;type:text"`
	LastUpdated time.Time `gorm:"column:last_updated;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the UserRole model
func (UserRole) TableName() string {
	return "user_roles"
}
