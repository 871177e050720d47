// Package textutil provides text helpers shared by the export stages.
//
// File names written to the relocation directory often end up on FAT32 or
// exFAT media read by DJ hardware, so they are cleaned to the character set
// those file systems accept.
package textutil
