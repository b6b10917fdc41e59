package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"wallet-lens/pkg/config"
	"wallet-lens/pkg/parser"
	"wallet-lens/pkg/types"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Query parameters a request may use to override the server's extract settings
var queryOptions = []string{
	"strategy", "type", "sec", "automated-detection",
	"marker", "marker-hex", "window", "key-len",
}

func main() {
	log := logrus.New()

	// Config from WALLET_LENS_CONFIG, port from PORT
	cfg := config.DefaultConfig()
	if path := os.Getenv("WALLET_LENS_CONFIG"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			log.WithError(err).Fatal("failed to load config")
		}
		cfg = loaded
	}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			log.WithField("port", port).Fatal("invalid PORT")
		}
		cfg.Server.Port = p
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	if err := cfg.ValidateServer(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(cfg.LogLevel())

	gin.SetMode(gin.ReleaseMode)
	r := newRouter(cfg, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Bind, cfg.Server.Port)
	fmt.Printf("http://%s\n", addr)
	if err := r.Run(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func newRouter(cfg *config.Config, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.POST("/api/extract", func(c *gin.Context) {
		handleExtract(c, cfg, log)
	})

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html", []byte(fallbackHTML))
	})

	return r
}

func handleExtract(c *gin.Context, base *config.Config, log *logrus.Logger) {
	// Per-request copy so query overrides never leak between requests
	cfg := *base
	if err := config.ApplyValues(&cfg, c.GetQuery, queryOptions...); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_ARGS", err.Error())
		return
	}
	if err := cfg.Validate(); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_ARGS", err.Error())
		return
	}

	buffer, name, err := readWallet(c, cfg.Server.MaxUploadBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abort(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
				fmt.Sprintf("wallet exceeds %d bytes", cfg.Server.MaxUploadBytes))
			return
		}
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	opts, err := cfg.ExtractOptions(log)
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_ARGS", err.Error())
		return
	}
	opts.WalletPath = name

	out := parser.Extract(buffer, opts)
	log.WithFields(logrus.Fields{
		"remote":    c.ClientIP(),
		"report_id": out.ReportID,
		"size":      out.SizeBytes,
		"found":     out.Found,
	}).Info("extraction served")

	c.JSON(http.StatusOK, out)
}

// readWallet accepts either a multipart upload in field "wallet" or the raw
// request body.
func readWallet(c *gin.Context, limit int64) ([]byte, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	if c.ContentType() == "multipart/form-data" {
		fh, err := c.FormFile("wallet")
		if err != nil {
			return nil, "", fmt.Errorf("missing wallet upload: %w", err)
		}
		if fh.Size > limit {
			return nil, "", &http.MaxBytesError{Limit: limit}
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read upload: %w", err)
		}
		return data, fh.Filename, nil
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty request body")
	}
	return data, "", nil
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, types.ExtractionOutput{
		OK:    false,
		Error: &types.ErrorInfo{Code: code, Message: message},
	})
}

const fallbackHTML = `<!DOCTYPE html>
<html>
<head>
    <title>wallet-lens</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
        h1 { color: #f7931a; }
        button { background: #f7931a; color: white; padding: 10px 20px; border: none; cursor: pointer; }
        pre { background: #f5f5f5; padding: 15px; overflow-x: auto; }
    </style>
</head>
<body>
    <h1>wallet-lens</h1>
    <p>Choose a wallet file to scan. Results are heuristic; nothing is decrypted.</p>
    <input type="file" id="wallet">
    <select id="strategy">
        <option value="auto">auto</option>
        <option value="tagged">tagged</option>
        <option value="entropy">entropy</option>
    </select>
    <br><br>
    <button onclick="extract()">Analyze Wallet</button>
    <h2>Result:</h2>
    <pre id="output">Results will appear here...</pre>

    <script>
        async function extract() {
            const file = document.getElementById('wallet').files[0];
            const strategy = document.getElementById('strategy').value;
            const output = document.getElementById('output');
            if (!file) {
                output.textContent = 'Choose a file first.';
                return;
            }
            const form = new FormData();
            form.append('wallet', file);

            try {
                const response = await fetch('/api/extract?strategy=' + strategy, {
                    method: 'POST',
                    body: form
                });
                const result = await response.json();
                output.textContent = JSON.stringify(result, null, 2);
            } catch (err) {
                output.textContent = 'Error: ' + err.message;
            }
        }
    </script>
</body>
</html>`
