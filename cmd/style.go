package main

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/powledger/ledger"
)

// blockPanel renders a sealed block inside a titled box.
func blockPanel(index int, b *ledger.SealedBlock) string {
	pbox := pterm.DefaultBox.WithHorizontalPadding(2).WithTopPadding(0).WithBottomPadding(0)
	title := pterm.LightYellow(fmt.Sprintf("|BLOCK %d|", index))
	if index == 0 {
		title = pterm.LightGreen("|GENESIS|")
	}
	body := pterm.Sprintfln("Seal:  %s", pterm.LightCyan(fmt.Sprintf("%X", b.Seal()))) +
		pterm.Sprintfln("Link:  %X", b.Link()) +
		pterm.Sprintfln("Nonce: %d", b.Nonce()) +
		pterm.Sprintf("Time:  %s", b.Timestamp().Format("2006-01-02 15:04:05.000000"))
	return pbox.WithTitle(title).WithTitleTopLeft().Sprint(body)
}

func printBlock(index int, b *ledger.SealedBlock) {
	pterm.Println(blockPanel(index, b))
}

// printChainStatus reports whether the chain validates.
func printChainStatus(valid bool, length int) {
	if valid {
		pterm.Success.Printfln("blockchain is valid (%d blocks)", length)
		return
	}
	pterm.Error.Printfln("blockchain is NOT valid (%d blocks)", length)
}
