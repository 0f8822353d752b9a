// Command pi-import loads the commercial PI spreadsheet into the database.
//
//	pi-import --arquivo PIs.xlsx [--aba Planilha1] [--warnings avisos.csv] [--dry-run]
package main

func main() {
	Execute()
}
