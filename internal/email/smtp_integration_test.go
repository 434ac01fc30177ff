package email

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/joho/godotenv"
)

func TestCheckConnection_RealSMTP(t *testing.T) {
	runIntegration := strings.TrimSpace(os.Getenv("RUN_INTEGRATION")) == "1" ||
		strings.TrimSpace(os.Getenv("RUN_SMTP_INTEGRATION")) == "1"
	if !runIntegration {
		t.Skip("set RUN_INTEGRATION=1 to run integration tests")
	}

	_ = godotenv.Load(filepath.Join("..", "..", ".env"))

	host := strings.TrimSpace(os.Getenv("SMTP_HOST"))
	portStr := strings.TrimSpace(os.Getenv("SMTP_PORT"))
	user := strings.TrimSpace(os.Getenv("SMTP_USER"))
	pass := strings.TrimSpace(os.Getenv("SMTP_PASS"))

	if host == "" || portStr == "" {
		t.Fatal("SMTP_HOST and SMTP_PORT are required")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("invalid SMTP_PORT=%q: %v", portStr, err)
	}

	cfg := SMTPConfig{
		Host: host,
		Port: port,
		User: user,
		Pass: pass,
		To:   strings.TrimSpace(os.Getenv("MAIL_TO")),
	}

	requireAuth := strings.TrimSpace(os.Getenv("SMTP_REQUIRE_AUTH")) == "1" || (user != "" && pass != "")
	var errConn error
	if requireAuth {
		errConn = CheckConnectionRequireAuth(cfg)
	} else {
		errConn = CheckConnection(cfg)
	}

	if errConn != nil {
		t.Fatalf("real SMTP connection failed: %v", errConn)
	}

	if cfg.To == "" {
		return
	}
	to, err := parseRecipients(cfg.To)
	if err != nil {
		t.Fatalf("MAIL_TO=%q: %v", cfg.To, err)
	}
	if user != "" && pass != "" && !Enabled(cfg) {
		t.Fatalf("Enabled() = false with credentials and MAIL_TO set (%d recipients)", len(to))
	}
	if !Enabled(cfg) || strings.TrimSpace(os.Getenv("SMTP_SEND_TEST")) != "1" {
		return
	}
	body := "Resumo da carga RFCNPJ Parquet\n\n[cnae] escrito: 5 linhas\n[socio] vazio"
	if err := Send(cfg, "RFCNPJ Parquet - teste de integração", body); err != nil {
		t.Fatalf("send report to %v: %v", to, err)
	}
}
