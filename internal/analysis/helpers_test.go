package analysis

import (
	"os"

	"github.com/chrissnell/oceanlab/internal/dataset"
)

func decodeFile(path string, format dataset.Format, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return dataset.Decode(f, format, v)
}
