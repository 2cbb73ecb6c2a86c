package source

import (
	"context"
	"io"
	"net"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contract-intake/internal/model"
)

// FTPOptions configures the FTP document source.
type FTPOptions struct {
	Host    string // host or host:port; port 21 assumed when absent
	Dir     string // remote directory holding contract PDFs
	User    string // empty selects anonymous login
	Pass    string
	Timeout time.Duration
}

// FTPSource enumerates PDFs in a remote drop directory. The document ID is
// the remote path, stable across cycles.
type FTPSource struct {
	opts FTPOptions
}

// NewFTP creates an FTPSource.
func NewFTP(opts FTPOptions) *FTPSource {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.User == "" {
		opts.User = "anonymous"
		opts.Pass = "anonymous@"
	}
	if _, _, err := net.SplitHostPort(opts.Host); err != nil {
		opts.Host = net.JoinHostPort(opts.Host, "21")
	}
	return &FTPSource{opts: opts}
}

func (s *FTPSource) List(ctx context.Context) ([]model.Document, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit()

	entries, err := conn.List(s.opts.Dir)
	if err != nil {
		return nil, eris.Wrapf(err, "source: ftp list %s", s.opts.Dir)
	}

	var docs []model.Document
	for _, e := range entries {
		if e.Type != ftp.EntryTypeFile || !strings.EqualFold(path.Ext(e.Name), ".pdf") {
			continue
		}
		remote := path.Join(s.opts.Dir, e.Name)
		docs = append(docs, model.Document{
			ID:   remote,
			Name: e.Name,
			Link: "ftp://" + s.opts.Host + remote,
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Localize retrieves the remote document into a temp file. The cleanup
// function removes it.
func (s *FTPSource) Localize(ctx context.Context, doc model.Document) (string, func(), error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return "", nil, err
	}
	defer conn.Quit()

	resp, err := conn.Retr(doc.ID)
	if err != nil {
		return "", nil, eris.Wrapf(err, "source: ftp retrieve %s", doc.ID)
	}
	defer resp.Close()

	tmp, err := os.CreateTemp("", "contract-*.pdf")
	if err != nil {
		return "", nil, eris.Wrap(err, "source: create temp file")
	}
	if _, err := io.Copy(tmp, resp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, eris.Wrapf(err, "source: download %s", doc.ID)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, eris.Wrap(err, "source: close temp file")
	}

	zap.L().Debug("source: downloaded document",
		zap.String("document", doc.ID),
		zap.String("path", tmp.Name()),
	)
	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

func (s *FTPSource) dial(ctx context.Context) (*ftp.ServerConn, error) {
	conn, err := ftp.Dial(s.opts.Host,
		ftp.DialWithTimeout(s.opts.Timeout),
		ftp.DialWithContext(ctx),
	)
	if err != nil {
		return nil, eris.Wrap(err, "source: ftp dial")
	}
	if err := conn.Login(s.opts.User, s.opts.Pass); err != nil {
		conn.Quit()
		return nil, eris.Wrap(err, "source: ftp login")
	}
	return conn, nil
}
