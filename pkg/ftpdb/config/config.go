package config

import (
	ftpdconfig "github.com/tkjenll/ebftpd/pkg/config"
)

const (
	TxRetryKey   = "EBFTPD_TX_RETRY"
	minTxRetries = 3
)

// GetTxRetry returns how many times a failed transaction is attempted. It is
// read from EBFTPD_TX_RETRY through the process Configer and never drops
// below 3.
func GetTxRetry() int {
	retries := ftpdconfig.GetIntKeyWithDefault(TxRetryKey, minTxRetries)
	if retries < minTxRetries {
		return minTxRetries
	}

	return retries
}
