package model

// LowStockItem is a product whose stock is below a threshold.
type LowStockItem struct {
	ProductID int64  `json:"productId" db:"product_id"`
	Name      string `json:"name" db:"name"`
	Barcode   string `json:"barcode" db:"barcode"`
	Quantity  int    `json:"quantity" db:"quantity"`
}

// MonthlySales totals accepted orders per calendar month (YYYY-MM).
type MonthlySales struct {
	Month         string  `json:"month" db:"month"`
	OrderCount    int     `json:"orderCount" db:"order_count"`
	TotalSales    float64 `json:"totalSales" db:"total_sales"`
	TotalDiscount float64 `json:"totalDiscount" db:"total_discount"`
}

// EmployeeSales totals accepted orders and units per employee.
type EmployeeSales struct {
	EmployeeID int64   `json:"employeeId" db:"employee_id"`
	Name       string  `json:"name" db:"name"`
	OrderCount int     `json:"orderCount" db:"order_count"`
	UnitsSold  int     `json:"unitsSold" db:"units_sold"`
	TotalSales float64 `json:"totalSales" db:"total_sales"`
}
