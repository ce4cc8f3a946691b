package importer

import (
	"fmt"
	"io"

	"github.com/tassioalves/controle-financeiro-semanal/internal/importer/genericcsv"
	"github.com/tassioalves/controle-financeiro-semanal/internal/week"
)

type Service struct {
	csvParser Parser
}

func NewService() *Service {
	return &Service{
		csvParser: genericcsv.NewParser(),
	}
}

func (s *Service) Parse(format Format, r io.Reader) ([]week.CreateParams, error) {
	var parser Parser

	switch format {
	case FormatCSV:
		parser = s.csvParser
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	return parser.Parse(r)
}
