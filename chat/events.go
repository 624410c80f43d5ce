package chat

// Inbound event names.
const (
	evtFriendRequest = "friend_request"
	evtAcceptRequest = "accept_request"
	evtCancelRequest = "cancel_request"

	evtGetConversations    = "get_conversations"
	evtStartConversation   = "start_conversation"
	evtGetMessages         = "get_messages"
	evtCurrentConversation = "get_current_conversation"
	evtTextMessage         = "text_message"
	evtClearMessages       = "clear_messages"
	evtDeleteConversation  = "delete_conversation"

	evtEnd = "end"
)

// Direct-reply event names; these go back to the originating session only.
const (
	replyConversations       = "conversations"
	replyOpenChat            = "open_chat"
	replyCurrentConversation = "current_conversation"
	replyMessagesCleared     = "messages_cleared"
	replyConversationDeleted = "conversation_deleted"
	replyError               = "error"
)
