// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpmsg

import (
	"github.com/intuitivelabs/bytescase"
)

// FieldId identifies a well-known HTTP field. The set is closed and
// compile-time known; names that do not resolve map to FieldUnknown.
type FieldId uint8

// Well-known field ids.
const (
	FieldUnknown FieldId = iota
	FieldAccept
	FieldAcceptCharset
	FieldAcceptEncoding
	FieldAcceptLanguage
	FieldAcceptRanges
	FieldACAllowCredentials
	FieldACAllowHeaders
	FieldACAllowMethods
	FieldACAllowOrigin
	FieldACExposeHeaders
	FieldACMaxAge
	FieldACRequestHeaders
	FieldACRequestMethod
	FieldAge
	FieldAllow
	FieldAuthorization
	FieldCacheControl
	FieldConnection
	FieldContentDisposition
	FieldContentEncoding
	FieldContentLanguage
	FieldContentLength
	FieldContentLocation
	FieldContentRange
	FieldContentSecurityPolicy
	FieldContentType
	FieldCookie
	FieldDate
	FieldETag
	FieldExpect
	FieldExpires
	FieldForwarded
	FieldFrom
	FieldHost
	FieldIfMatch
	FieldIfModifiedSince
	FieldIfNoneMatch
	FieldIfRange
	FieldIfUnmodifiedSince
	FieldKeepAlive
	FieldLastModified
	FieldLink
	FieldLocation
	FieldMaxForwards
	FieldOrigin
	FieldPragma
	FieldProxyAuthenticate
	FieldProxyAuthorization
	FieldProxyConnection
	FieldRange
	FieldReferer
	FieldRetryAfter
	FieldSecWebSocketAccept
	FieldSecWebSocketExtensions
	FieldSecWebSocketKey
	FieldSecWebSocketProtocol
	FieldSecWebSocketVersion
	FieldServer
	FieldSetCookie
	FieldStrictTransportSecurity
	FieldTE
	FieldTrailer
	FieldTransferEncoding
	FieldUpgrade
	FieldUserAgent
	FieldVary
	FieldVia
	FieldWWWAuthenticate
	FieldWarning
	FieldXContentTypeOptions
	FieldXForwardedFor
	FieldXForwardedHost
	FieldXForwardedProto
	FieldXFrameOptions
	FieldXRequestedWith
	FieldXXSSProtection
	fieldIdMax // must be last
)

// canonical spellings, indexed by FieldId
var fieldNames = [fieldIdMax]string{
	FieldUnknown:                 "",
	FieldAccept:                  "Accept",
	FieldAcceptCharset:           "Accept-Charset",
	FieldAcceptEncoding:          "Accept-Encoding",
	FieldAcceptLanguage:          "Accept-Language",
	FieldAcceptRanges:            "Accept-Ranges",
	FieldACAllowCredentials:      "Access-Control-Allow-Credentials",
	FieldACAllowHeaders:          "Access-Control-Allow-Headers",
	FieldACAllowMethods:          "Access-Control-Allow-Methods",
	FieldACAllowOrigin:           "Access-Control-Allow-Origin",
	FieldACExposeHeaders:         "Access-Control-Expose-Headers",
	FieldACMaxAge:                "Access-Control-Max-Age",
	FieldACRequestHeaders:        "Access-Control-Request-Headers",
	FieldACRequestMethod:         "Access-Control-Request-Method",
	FieldAge:                     "Age",
	FieldAllow:                   "Allow",
	FieldAuthorization:           "Authorization",
	FieldCacheControl:            "Cache-Control",
	FieldConnection:              "Connection",
	FieldContentDisposition:      "Content-Disposition",
	FieldContentEncoding:         "Content-Encoding",
	FieldContentLanguage:         "Content-Language",
	FieldContentLength:           "Content-Length",
	FieldContentLocation:         "Content-Location",
	FieldContentRange:            "Content-Range",
	FieldContentSecurityPolicy:   "Content-Security-Policy",
	FieldContentType:             "Content-Type",
	FieldCookie:                  "Cookie",
	FieldDate:                    "Date",
	FieldETag:                    "ETag",
	FieldExpect:                  "Expect",
	FieldExpires:                 "Expires",
	FieldForwarded:               "Forwarded",
	FieldFrom:                    "From",
	FieldHost:                    "Host",
	FieldIfMatch:                 "If-Match",
	FieldIfModifiedSince:         "If-Modified-Since",
	FieldIfNoneMatch:             "If-None-Match",
	FieldIfRange:                 "If-Range",
	FieldIfUnmodifiedSince:       "If-Unmodified-Since",
	FieldKeepAlive:               "Keep-Alive",
	FieldLastModified:            "Last-Modified",
	FieldLink:                    "Link",
	FieldLocation:                "Location",
	FieldMaxForwards:             "Max-Forwards",
	FieldOrigin:                  "Origin",
	FieldPragma:                  "Pragma",
	FieldProxyAuthenticate:       "Proxy-Authenticate",
	FieldProxyAuthorization:      "Proxy-Authorization",
	FieldProxyConnection:         "Proxy-Connection",
	FieldRange:                   "Range",
	FieldReferer:                 "Referer",
	FieldRetryAfter:              "Retry-After",
	FieldSecWebSocketAccept:      "Sec-WebSocket-Accept",
	FieldSecWebSocketExtensions:  "Sec-WebSocket-Extensions",
	FieldSecWebSocketKey:         "Sec-WebSocket-Key",
	FieldSecWebSocketProtocol:    "Sec-WebSocket-Protocol",
	FieldSecWebSocketVersion:     "Sec-WebSocket-Version",
	FieldServer:                  "Server",
	FieldSetCookie:               "Set-Cookie",
	FieldStrictTransportSecurity: "Strict-Transport-Security",
	FieldTE:                      "TE",
	FieldTrailer:                 "Trailer",
	FieldTransferEncoding:        "Transfer-Encoding",
	FieldUpgrade:                 "Upgrade",
	FieldUserAgent:               "User-Agent",
	FieldVary:                    "Vary",
	FieldVia:                     "Via",
	FieldWWWAuthenticate:         "WWW-Authenticate",
	FieldWarning:                 "Warning",
	FieldXContentTypeOptions:     "X-Content-Type-Options",
	FieldXForwardedFor:           "X-Forwarded-For",
	FieldXForwardedHost:          "X-Forwarded-Host",
	FieldXForwardedProto:         "X-Forwarded-Proto",
	FieldXFrameOptions:           "X-Frame-Options",
	FieldXRequestedWith:          "X-Requested-With",
	FieldXXSSProtection:          "X-XSS-Protection",
}

// Name returns the canonical spelling ("" for FieldUnknown).
func (f FieldId) Name() string {
	if f >= fieldIdMax {
		return ""
	}
	return fieldNames[f]
}

// String implements the Stringer interface.
func (f FieldId) String() string {
	if f == FieldUnknown || f >= fieldIdMax {
		return "Unknown"
	}
	return fieldNames[f]
}

// first-char & length based hash buckets (same mechanism as the method
// lookup); collisions resolved by a linear walk over the bucket
const (
	fnBitsLen   uint = 3
	fnBitsFChar uint = 5
)

type fld2Id struct {
	n []byte
	t FieldId
}

var fieldNameLookup [1 << (fnBitsLen + fnBitsFChar)][]fld2Id

func hashFieldName(n []byte) int {
	const (
		mC = (1 << fnBitsFChar) - 1
		mL = (1 << fnBitsLen) - 1
	)
	return (int(bytescase.ByteToLower(n[0])) & mC) |
		((len(n) & mL) << fnBitsFChar)
}

func init() {
	for id := FieldUnknown + 1; id < fieldIdMax; id++ {
		n := []byte(fieldNames[id])
		i := hashFieldName(n)
		fieldNameLookup[i] = append(fieldNameLookup[i], fld2Id{n, id})
	}
}

// LookupField returns the FieldId for a field name (ASCII
// case-insensitive) or FieldUnknown. The name must have no surrounding
// whitespace.
func LookupField(name []byte) FieldId {
	if len(name) == 0 {
		return FieldUnknown
	}
	i := hashFieldName(name)
	for _, f := range fieldNameLookup[i] {
		if bytescase.CmpEq(name, f.n) {
			return f.t
		}
	}
	return FieldUnknown
}
