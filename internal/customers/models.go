package customers

// Customer is one row of the customers table
type Customer struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"not null" json:"email"`
}

// TableName pins the table name used by gorm
func (Customer) TableName() string {
	return "customers"
}

const (
	createTable = `CREATE TABLE IF NOT EXISTS customers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL
)`

	// A customer is identified by the pair; the same name may appear with
	// different addresses
	createUniqueIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_name_email ON customers(name, email)`
)
