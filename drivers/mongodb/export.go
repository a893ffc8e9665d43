package driver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/datazip-inc/dskit/constants"
	"github.com/datazip-inc/dskit/types"
	"github.com/datazip-inc/dskit/utils"
	"github.com/datazip-inc/dskit/utils/jsonutil"
	"github.com/datazip-inc/dskit/utils/logger"
)

// ExportOptions selects the collection to export and where to write it
type ExportOptions struct {
	DBMS       string
	Config     *Config
	Collection string
	OutputPath string

	// Progress logs a running count every ProgressEvery documents
	Progress      bool
	ProgressEvery int
}

func (o *ExportOptions) validate() error {
	if !strings.EqualFold(o.DBMS, string(constants.MongoDB)) {
		return fmt.Errorf("%w: export from dbms[%s]", types.ErrUnsupported, o.DBMS)
	}
	if !strings.HasSuffix(o.OutputPath, constants.ExportFileExt) {
		return types.Preconditionf("output path must end with %s: %s", constants.ExportFileExt, o.OutputPath)
	}
	if o.Collection == "" {
		return types.Preconditionf("collection is required")
	}
	if o.Config == nil {
		return types.Preconditionf("mongodb config is required")
	}
	if err := o.Config.Validate(); err != nil {
		return fmt.Errorf("failed to validate config: %s", err)
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = constants.DefaultProgressEvery
	}
	return nil
}

// ExportTable writes every document of a collection, in natural order, to
// OutputPath as one relaxed extended JSON document per line. It returns the
// number of documents written.
func ExportTable(ctx context.Context, opts ExportOptions) (int64, error) {
	if err := opts.validate(); err != nil {
		return 0, err
	}

	client, err := Connect(ctx, opts.Config)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
			logger.Warnf("failed to disconnect from mongodb: %s", err)
		}
	}()

	collection := client.Database(opts.Config.Database).Collection(opts.Collection)
	cursor, err := collection.Find(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to open cursor on %s.%s: %s", opts.Config.Database, opts.Collection, err)
	}

	logger.Infof("exporting %s.%s to %s", opts.Config.Database, opts.Collection, opts.OutputPath)
	return ExportCursor(ctx, cursor, opts.OutputPath, utils.Ternary(opts.Progress, opts.ProgressEvery, 0).(int))
}

// Connect opens a client and verifies the deployment answers
func Connect(ctx context.Context, config *Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(config.URI()).
		SetCompressors([]string{"snappy"}).
		SetConnectTimeout(constants.DefaultConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %s", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, constants.DefaultConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, opts.ReadPreference); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %s", err)
	}
	return client, nil
}

// ExportCursor drains cursor into a new file at outputPath, closing the
// cursor when done. progressEvery <= 0 disables progress logging.
func ExportCursor(ctx context.Context, cursor *mongo.Cursor, outputPath string, progressEvery int) (written int64, err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		_ = cursor.Close(ctx)
		return 0, fmt.Errorf("failed to create output file: %s", err)
	}

	writer := bufio.NewWriter(file)
	defer func() {
		var result *multierror.Error
		if err != nil {
			result = multierror.Append(result, err)
		}
		if cerr := cursor.Close(context.WithoutCancel(ctx)); cerr != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close cursor: %s", cerr))
		}
		if ferr := writer.Flush(); ferr != nil {
			result = multierror.Append(result, fmt.Errorf("failed to flush output: %s", ferr))
		}
		if ferr := file.Close(); ferr != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close output: %s", ferr))
		}
		err = result.ErrorOrNil()
	}()

	written, err = WriteDocuments(ctx, cursor, writer, progressEvery)
	if err != nil {
		return written, err
	}

	logger.Infof("exported %s documents to %s", humanize.Comma(written), outputPath)
	return written, nil
}

// WriteDocuments writes every remaining document of cursor to w as one
// relaxed extended JSON line each.
func WriteDocuments(ctx context.Context, cursor *mongo.Cursor, w io.Writer, progressEvery int) (int64, error) {
	var written int64
	for cursor.Next(ctx) {
		line, err := jsonutil.Dump(cursor.Current)
		if err != nil {
			return written, fmt.Errorf("failed to encode document %d: %s", written+1, err)
		}
		if _, err := io.WriteString(w, strings.TrimSpace(line)+"\n"); err != nil {
			return written, fmt.Errorf("failed to write document %d: %s", written+1, err)
		}

		written++
		if progressEvery > 0 && written%int64(progressEvery) == 0 {
			logger.Infof("exported %s documents", humanize.Comma(written))
		}
	}

	if err := cursor.Err(); err != nil {
		return written, fmt.Errorf("cursor failed after %d documents: %s", written, err)
	}
	return written, nil
}
