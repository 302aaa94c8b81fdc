// Command budgetctl inspects and edits a smartbudget ledger from the terminal.
package main

func main() {
	Execute()
}
