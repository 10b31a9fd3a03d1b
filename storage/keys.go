/*
 * Copyright (c) 2022 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package storage

import "strings"

const (
	KeyPrefixComponentsSeparator = ":"
	KeyPrefixIDSeparator         = "#"
)

// NewKeyForOutcome builds the Redis/in-memory key for an EventOutcome:
// outcomes:<machineName>#<eventID>
func NewKeyForOutcome(eventID, machineName string) string {
	prefix := strings.Join([]string{"outcomes", machineName}, KeyPrefixComponentsSeparator)
	return strings.Join([]string{prefix, eventID}, KeyPrefixIDSeparator)
}
