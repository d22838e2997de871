package csv_test

import (
	"fmt"
	"os"

	"github.com/nathangeffen/libuseful/pkg/csv"
)

// Example parses a small document, reads a cell and writes it back out.
func Example() {
	doc, err := csv.ReadString("First,Last,age\nJoe,Bloggs,23\n\"Smith, Jr\",Bob,41\n", csv.DefaultReadOptions())
	if err != nil {
		fmt.Println(err)
		return
	}

	name, _ := doc.At(1, 0)
	fmt.Println(doc.Len(), "rows;", name)
	_ = csv.Write(os.Stdout, doc, csv.DefaultWriteOptions())

	// Output:
	// 2 rows; Smith, Jr
	// First,Last,age
	// Joe,Bloggs,23
	// "Smith, Jr",Bob,41
}

// ExampleDocument_Validate shows how ragged rows are reported.
func ExampleDocument_Validate() {
	doc := csv.New("a", "b", "c")
	_ = doc.Append("1", "2", "3")
	_ = doc.Append("4", "5")

	report := doc.Validate(false)
	fmt.Println(report.Valid())
	for _, m := range report.Mismatches {
		fmt.Println(m)
	}

	// Output:
	// false
	// Row 1 has 2 columns, expected 3.
}
