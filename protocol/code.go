package protocol

// ResponseCode is the 3 digit status code that starts every NNTP
// response. Codes the client understands classify into a Kind; any
// other value keeps its numeric form and classifies as KindUnknown.
type ResponseCode uint16

// Kind is the semantic classification of a response code, for the
// commands this client issues. Codes are a closed, flat enumeration so
// this is a static mapping rather than anything richer.
type Kind int

const (
	KindUnknown Kind = iota

	// 1xx and 2xx - informational / success
	KindHelpFollows
	KindCapabilitiesFollow
	KindPostingAllowed
	KindPostingProhibited
	KindConnectionClosing
	KindGroupSelected
	KindListFollows
	KindArticleFollows
	KindHeadFollows
	KindBodyFollows
	KindArticleExists
	KindOverviewFollows
	KindNewArticlesFollow
	KindNewGroupsFollow
	KindAuthenticationAccepted

	// 3xx - successful continuation
	KindPasswordRequired

	// 4xx and 5xx - failures
	KindNoSuchNewsgroup
	KindNoNewsgroupSelected
	KindNoSuchArticleNumber
	KindNoSuchArticle
	KindAuthenticationRequired
	KindAuthenticationRejected
	KindUnknownCommand
	KindSyntaxError
	KindNotPermitted
)

// Kind classifies the code.
func (c ResponseCode) Kind() Kind {
	switch c {
	case 100:
		return KindHelpFollows
	case 101:
		return KindCapabilitiesFollow
	case 200:
		return KindPostingAllowed
	case 201:
		return KindPostingProhibited
	case 205:
		return KindConnectionClosing
	case 211:
		return KindGroupSelected
	case 215:
		return KindListFollows
	case 220:
		return KindArticleFollows
	case 221:
		return KindHeadFollows
	case 222:
		return KindBodyFollows
	case 223:
		return KindArticleExists
	case 224:
		return KindOverviewFollows
	case 230:
		return KindNewArticlesFollow
	case 231:
		return KindNewGroupsFollow
	case 281:
		return KindAuthenticationAccepted
	case 381:
		return KindPasswordRequired
	case 411:
		return KindNoSuchNewsgroup
	case 412:
		return KindNoNewsgroupSelected
	case 423:
		return KindNoSuchArticleNumber
	case 430:
		return KindNoSuchArticle
	case 480:
		return KindAuthenticationRequired
	case 481:
		return KindAuthenticationRejected
	case 500:
		return KindUnknownCommand
	case 501:
		return KindSyntaxError
	case 502:
		return KindNotPermitted
	default:
		return KindUnknown
	}
}

// IsMultiline reports whether responses with this code carry a
// multi-line data block.
//
// Note 211 is absent: it only introduces a data block in reply to
// LISTGROUP, which this client never sends. In reply to GROUP it is a
// single line.
func (c ResponseCode) IsMultiline() bool {
	switch c {
	case 100, 101, 215, 220, 221, 222, 224, 230, 231:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindHelpFollows:
		return "help text follows"
	case KindCapabilitiesFollow:
		return "capability list follows"
	case KindPostingAllowed:
		return "service available, posting allowed"
	case KindPostingProhibited:
		return "service available, posting prohibited"
	case KindConnectionClosing:
		return "connection closing"
	case KindGroupSelected:
		return "group selected"
	case KindListFollows:
		return "list follows"
	case KindArticleFollows:
		return "article follows"
	case KindHeadFollows:
		return "headers follow"
	case KindBodyFollows:
		return "body follows"
	case KindArticleExists:
		return "article exists"
	case KindOverviewFollows:
		return "overview information follows"
	case KindNewArticlesFollow:
		return "list of new articles follows"
	case KindNewGroupsFollow:
		return "list of new newsgroups follows"
	case KindAuthenticationAccepted:
		return "authentication accepted"
	case KindPasswordRequired:
		return "password required"
	case KindNoSuchNewsgroup:
		return "no such newsgroup"
	case KindNoNewsgroupSelected:
		return "no newsgroup selected"
	case KindNoSuchArticleNumber:
		return "no article with that number"
	case KindNoSuchArticle:
		return "no article with that message-id"
	case KindAuthenticationRequired:
		return "authentication required"
	case KindAuthenticationRejected:
		return "authentication rejected"
	case KindUnknownCommand:
		return "unknown command"
	case KindSyntaxError:
		return "syntax error"
	case KindNotPermitted:
		return "command not permitted"
	default:
		return "unclassified response code"
	}
}
