package router

import "net/http"

type methodTyp uint

const (
	mCONNECT methodTyp = 1 << iota
	mDELETE
	mGET
	mHEAD
	mOPTIONS
	mPATCH
	mPOST
	mPUT
	mTRACE

	// mALL is the slot used by Handle; it serves any method without a more
	// specific registration on the same node.
	mALL
)

var methodMap = map[string]methodTyp{
	http.MethodConnect: mCONNECT,
	http.MethodDelete:  mDELETE,
	http.MethodGet:     mGET,
	http.MethodHead:    mHEAD,
	http.MethodOptions: mOPTIONS,
	http.MethodPatch:   mPATCH,
	http.MethodPost:    mPOST,
	http.MethodPut:     mPUT,
	http.MethodTrace:   mTRACE,
}

// methodOrder fixes the order of methods in Allow headers and introspection.
var methodOrder = []methodTyp{mGET, mHEAD, mPOST, mPUT, mPATCH, mDELETE, mOPTIONS, mCONNECT, mTRACE}

func (m methodTyp) String() string {
	switch m {
	case mCONNECT:
		return http.MethodConnect
	case mDELETE:
		return http.MethodDelete
	case mGET:
		return http.MethodGet
	case mHEAD:
		return http.MethodHead
	case mOPTIONS:
		return http.MethodOptions
	case mPATCH:
		return http.MethodPatch
	case mPOST:
		return http.MethodPost
	case mPUT:
		return http.MethodPut
	case mTRACE:
		return http.MethodTrace
	case mALL:
		return "*"
	}
	return ""
}
