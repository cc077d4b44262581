package orders

import (
	"fmt"
	"strings"
	"time"

	"autocatalog-backend/internal/i18n"
	"autocatalog-backend/internal/models"
	"autocatalog-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportColumns = []string{"createdAt", "phone", "comment", "products", "status", "id"}

var columnWidths = []struct {
	from, to string
	width    float64
}{
	{"A", "A", 20},
	{"B", "B", 18},
	{"C", "D", 45},
	{"E", "E", 15},
	{"F", "F", 38},
}

// buildWorkbook writes one row per order with headers and status labels in
// lang. Deleted products are listed by id.
func buildWorkbook(lang string, orders []models.Order, products map[string]models.Product) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := i18n.T(lang, "orders.export.sheet")
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, err
	}

	header := make([]any, 0, len(exportColumns))
	for _, col := range exportColumns {
		header = append(header, i18n.T(lang, "orders.export."+col))
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(exportColumns))
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		f.Close()
		return nil, err
	}
	for _, w := range columnWidths {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			f.Close()
			return nil, err
		}
	}

	deleted := i18n.T(lang, "catalog.productDeleted")
	for i, o := range orders {
		names := make([]string, 0, len(o.ProductIDs))
		for _, id := range o.ProductIDs {
			if p, ok := products[id]; ok {
				names = append(names, p.Name)
			} else {
				names = append(names, fmt.Sprintf("%s (%s)", id, deleted))
			}
		}

		row := []any{
			o.CreatedAt.Format("2006-01-02 15:04"),
			o.Phone,
			o.Comment,
			strings.Join(names, "; "),
			i18n.T(lang, "orders.status."+string(o.Status)),
			o.ID,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// GET /api/admin/orders/export?lang=&status=
func ExportOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, err := parseStatusFilter(c.Query("status"))
		if err != nil {
			return err
		}
		lang := i18n.Negotiate(c.Query("lang"), c.Get(fiber.HeaderAcceptLanguage))

		ctx := c.UserContext()
		orders, err := repository.OrdersByStatus(ctx, status)
		if err != nil {
			return err
		}
		products, err := resolveProducts(ctx, orders)
		if err != nil {
			return err
		}

		f, err := buildWorkbook(lang, orders, products)
		if err != nil {
			return fmt.Errorf("building orders workbook: %w", err)
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fmt.Errorf("writing orders workbook: %w", err)
		}

		filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Send(buf.Bytes())
	}
}
