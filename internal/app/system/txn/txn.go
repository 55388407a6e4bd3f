// Package txn runs a function inside a MongoDB multi-document
// transaction, falling back to plain execution when the server does not
// support transactions (standalone deployments, mostly dev setups).
//
// The driver retries transient transaction errors internally; when the
// retries are exhausted the error surfaces to the caller, who treats it
// as an internal failure. Callers must re-read every document they touch
// inside fn: the callback may run more than once.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn within a session transaction on db's client. The
// context passed to fn carries the session; all collection operations
// inside fn must use it.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Warn("sessions not supported; running without transaction", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Warn("transactions not supported; running without transaction", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Server error codes that indicate transactions are unavailable rather
// than a failed transaction: IllegalOperation variants and the
// "transaction numbers require a replica set" error.
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation (transaction numbers on standalone)
	51:  true, // IllegalOperation
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions at all, as opposed to a transaction that
// failed. It checks known server error codes first and falls back to
// message keywords for errors the driver does not type.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if ok := asCommandError(err, &cmdErr); ok {
		if notSupportedCodes[cmdErr.Code] {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation") && has("transaction"):
		return true
	}
	return false
}

func asCommandError(err error, target *mongo.CommandError) bool {
	if ce, ok := err.(mongo.CommandError); ok {
		*target = ce
		return true
	}
	return false
}
