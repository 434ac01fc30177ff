package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/abriciof/rfcnpj-parquet/internal/pipeline"
)

func formatReport(rep report) string {
	dur := rep.FinishedAt.Sub(rep.StartedAt)
	sb := strings.Builder{}
	sb.WriteString("RFCNPJ Parquet - Finalizado\n")
	if rep.Offline {
		sb.WriteString("Modo: offline (arquivos já extraídos)\n")
	} else {
		sb.WriteString("Mês: " + rep.Month.HumanPTBR() + " (" + rep.Month.String() + ")\n")
		sb.WriteString("URL: " + rep.MonthURL + "\n")
	}
	sb.WriteString("Início: " + rep.StartedAt.Format(time.RFC3339) + "\n")
	sb.WriteString("Fim: " + rep.FinishedAt.Format(time.RFC3339) + "\n")
	sb.WriteString(fmt.Sprintf("Duração: %s\n", dur.Round(time.Second)))
	if !rep.Offline {
		sb.WriteString(fmt.Sprintf("Downloads planejados: %d\n", rep.Downloaded))
		sb.WriteString(fmt.Sprintf("Arquivos extraídos: %d\n", rep.Extracted))
	}
	if rep.ParquetDir != "" {
		sb.WriteString("Saída: " + rep.ParquetDir + "\n")
	}

	if rep.Outcomes != nil {
		sb.WriteString("\nResultado por dataset:\n")
		for _, o := range rep.Outcomes.List() {
			switch o.Status {
			case pipeline.StatusWritten:
				sb.WriteString(fmt.Sprintf("- %s: %d linhas", o.Type, o.Rows))
				if !o.Named {
					sb.WriteString(" (colunas posicionais)")
				}
			case pipeline.StatusEmpty:
				sb.WriteString(fmt.Sprintf("- %s: sem arquivos", o.Type))
			default:
				sb.WriteString(fmt.Sprintf("- %s: ERRO (%s)", o.Type, o.Message()))
			}
			if n := len(o.FailedFiles); n > 0 {
				sb.WriteString(fmt.Sprintf(", %d arquivo(s) ignorado(s)", n))
			}
			if len(o.PublishErrors) > 0 {
				sb.WriteString(", publicação: " + strings.Join(o.PublishErrors, "; "))
			}
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("\nTotal de linhas: %d\n", rep.Outcomes.TotalRows()))
	}

	if len(rep.Errors) > 0 {
		sb.WriteString("\nAvisos:\n")
		for _, e := range rep.Errors {
			sb.WriteString("- " + e + "\n")
		}
	}
	return sb.String()
}
