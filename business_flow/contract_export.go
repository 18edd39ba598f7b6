package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/radio-contracts/app/dto"
	"github.com/amirphl/radio-contracts/utils"
	"github.com/xuri/excelize/v2"
)

const (
	contractsSheetName = "Contracts"
	maxExportRows      = 10000
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var contractExportHeader = []any{
	"Contract Number", "Client", "Program", "Ad Type", "Title",
	"Start Date", "End Date", "Total Spots", "Price Per Spot",
	"Discount %", "Total Value", "Discount Amount", "Final Value",
	"Status", "Payment Status", "Created At",
}

// ExportContracts renders the filtered contracts as an xlsx workbook
func (f *ContractFlowImpl) ExportContracts(ctx context.Context, actor *Identity, req *dto.ListContractsRequest) (*dto.ExportFile, error) {
	if err := AuthorizeCapability(actor, CapContractsExport); err != nil {
		return nil, err
	}
	if req == nil {
		req = &dto.ListContractsRequest{}
	}

	filter, err := contractFilterFromRequest(req)
	if err != nil {
		return nil, err
	}

	contracts, err := f.contractRepo.ByFilter(ctx, filter, "contracts.created_at DESC", maxExportRows, 0)
	if err != nil {
		return nil, NewBusinessError("EXPORT_CONTRACTS_FAILED", "Failed to list contracts", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), contractsSheetName); err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to prepare Excel sheet", err)
	}
	header := contractExportHeader
	_ = xl.SetSheetRow(contractsSheetName, "A1", &header)

	for i, c := range toContractDTOs(contracts) {
		record := []any{
			c.ContractNumber,
			c.ClientName,
			c.ProgramName,
			c.AdTypeName,
			c.Title,
			c.StartDate,
			c.EndDate,
			c.TotalSpots,
			c.PricePerSpot.StringFixed(moneyPlaces),
			c.DiscountPercentage.StringFixed(moneyPlaces),
			c.TotalValue.StringFixed(moneyPlaces),
			c.DiscountAmount.StringFixed(moneyPlaces),
			c.FinalValue.StringFixed(moneyPlaces),
			c.Status,
			c.PaymentStatus,
			c.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(contractsSheetName, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	return &dto.ExportFile{
		FileName:    fmt.Sprintf("contracts_%s.xlsx", utils.UTCNow().Format("20060102_150405")),
		ContentType: xlsxContentType,
		Data:        buf.Bytes(),
	}, nil
}
