package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"edusync/backend/internal/dto"
	"edusync/backend/internal/model"
	"edusync/backend/internal/repository"
)

func TestMessageService_SendAndList(t *testing.T) {
	repo, _, users := newTestRepository()
	svc := NewMessageService(repo, zap.NewNop())
	ctx := context.Background()

	admin := &model.User{Name: "Registrar", Email: "registrar@x.edu", Role: "admin"}
	other := &model.User{Name: "Dean", Email: "dean@x.edu", Role: "admin"}
	_ = users.Create(ctx, admin)
	_ = users.Create(ctx, other)

	sent, err := svc.Send(ctx, &dto.MessageRequest{ReceiverType: model.PartyFaculty, ReceiverID: 2, Subject: " Timetable ", Body: "Please review."}, admin.UserID)
	if err != nil {
		t.Fatalf("期望发送成功，实际: %v", err)
	}
	if sent.SenderName != "Registrar" || sent.ReceiverName != "Dr. Jones" || sent.Subject != "Timetable" {
		t.Errorf("返回数据不符: %+v", sent)
	}
	if _, err := svc.Send(ctx, &dto.MessageRequest{ReceiverType: model.PartyAdmin, ReceiverID: admin.UserID, Subject: "Re", Body: "ok"}, other.UserID); err != nil {
		t.Fatalf("管理员之间发送失败: %v", err)
	}

	tests := []struct {
		name string
		req  dto.MessageRequest
	}{
		{"学生不存在", dto.MessageRequest{ReceiverType: model.PartyStudent, ReceiverID: 9, Subject: "s", Body: "b"}},
		{"管理员不存在", dto.MessageRequest{ReceiverType: model.PartyAdmin, ReceiverID: 99, Subject: "s", Body: "b"}},
		{"未知收件人类型", dto.MessageRequest{ReceiverType: "parent", ReceiverID: 1, Subject: "s", Body: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Send(ctx, &tt.req, admin.UserID); !errors.Is(err, ErrMessageRecipientNotFound) {
				t.Errorf("期望 ErrMessageRecipientNotFound，实际: %v", err)
			}
		})
	}

	inbox, _ := svc.List(ctx, repository.MessageBoxInbox, admin.UserID)
	if len(inbox) != 1 || inbox[0].SenderName != "Dean" {
		t.Errorf("收件箱期望 1 条来自 Dean，实际 %+v", inbox)
	}
	outbox, _ := svc.List(ctx, repository.MessageBoxSent, admin.UserID)
	if len(outbox) != 1 || outbox[0].ID != sent.ID {
		t.Errorf("发件箱期望 1 条，实际 %+v", outbox)
	}
	all, _ := svc.List(ctx, repository.MessageBoxAll, admin.UserID)
	if len(all) != 2 || all[0].SentAt < all[1].SentAt {
		t.Errorf("全部消息期望 2 条且按时间降序，实际 %+v", all)
	}
}

func TestMessageService_Delete(t *testing.T) {
	repo, _, users := newTestRepository()
	svc := NewMessageService(repo, zap.NewNop())
	ctx := context.Background()

	sender := &model.User{Name: "Registrar", Email: "registrar@x.edu", Role: "admin"}
	outsider := &model.User{Name: "Bursar", Email: "bursar@x.edu", Role: "admin"}
	_ = users.Create(ctx, sender)
	_ = users.Create(ctx, outsider)

	msg, _ := svc.Send(ctx, &dto.MessageRequest{ReceiverType: model.PartyFaculty, ReceiverID: 1, Subject: "s", Body: "b"}, sender.UserID)

	if err := svc.Delete(ctx, msg.ID, outsider.UserID); !errors.Is(err, ErrMessageForbidden) {
		t.Errorf("非收发方删除期望 ErrMessageForbidden，实际: %v", err)
	}
	if err := svc.Delete(ctx, msg.ID, sender.UserID); err != nil {
		t.Errorf("发件人删除期望成功，实际: %v", err)
	}
	if err := svc.Delete(ctx, msg.ID, sender.UserID); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("重复删除期望 ErrMessageNotFound，实际: %v", err)
	}
}
