package service

import (
	"sync"
	"testing"

	"github.com/learnpet/learnpet/models"
	"github.com/learnpet/learnpet/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMaterialRepo struct {
	repository.MaterialRepository
	mu        sync.Mutex
	nextID    uint
	materials map[uint]*models.LearningMaterial
}

func newFakeMaterialRepo() *fakeMaterialRepo {
	return &fakeMaterialRepo{materials: map[uint]*models.LearningMaterial{}}
}

func (f *fakeMaterialRepo) Create(material *models.LearningMaterial) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	material.ID = f.nextID
	f.materials[material.ID] = material
	return nil
}

func (f *fakeMaterialRepo) GetByID(id uint) (*models.LearningMaterial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	material, ok := f.materials[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return material, nil
}

func (f *fakeMaterialRepo) GetOwned(id, teacherID uint) (*models.LearningMaterial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	material, ok := f.materials[id]
	if !ok || material.TeacherID != teacherID {
		return nil, gorm.ErrRecordNotFound
	}
	return material, nil
}

func (f *fakeMaterialRepo) CountOwned(ids []uint, teacherID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, id := range ids {
		if material, ok := f.materials[id]; ok && material.TeacherID == teacherID {
			count++
		}
	}
	return count, nil
}

func (f *fakeMaterialRepo) Delete(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.materials, id)
	return nil
}

func (f *fakeMaterialRepo) DeleteBatch(ids []uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.materials, id)
	}
	return nil
}

func newTestMaterialService() (MaterialService, *fakeMaterialRepo) {
	repo := newFakeMaterialRepo()
	return NewMaterialService(repo, logrus.New()), repo
}

func TestUploadDefaultsExtensionFromURL(t *testing.T) {
	svc, _ := newTestMaterialService()

	material, err := svc.Upload(100, "课件", "document", "", "/objects/uploads/abc.pdf", []string{"语文"})
	require.NoError(t, err)
	assert.Equal(t, "pdf", material.FileExtension)

	material, err = svc.Upload(100, "课件2", "document", "docx", "/objects/uploads/def.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, "docx", material.FileExtension, "显式扩展名优先")
}

// 非上传者删除时返回 not found，不泄露资料归属
func TestDeleteOwnerOnly(t *testing.T) {
	svc, repo := newTestMaterialService()
	material, err := svc.Upload(100, "课件", "document", "pdf", "/objects/uploads/a.pdf", nil)
	require.NoError(t, err)

	err = svc.Delete(101, material.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, repo.materials, 1)

	require.NoError(t, svc.Delete(100, material.ID))
	assert.Empty(t, repo.materials)
}

// 批量删除是全有或全无：任一 id 不合法则整批不动
func TestBatchDeleteAllOrNothing(t *testing.T) {
	svc, repo := newTestMaterialService()
	m1, err := svc.Upload(100, "课件1", "document", "pdf", "/objects/uploads/a.pdf", nil)
	require.NoError(t, err)
	m2, err := svc.Upload(100, "课件2", "document", "pdf", "/objects/uploads/b.pdf", nil)
	require.NoError(t, err)
	other, err := svc.Upload(101, "别人的", "document", "pdf", "/objects/uploads/c.pdf", nil)
	require.NoError(t, err)

	// 混入他人资料
	err = svc.BatchDelete(100, []uint{m1.ID, other.ID})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, repo.materials, 3)

	// 混入不存在的 id
	err = svc.BatchDelete(100, []uint{m1.ID, 999})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, repo.materials, 3)

	require.NoError(t, svc.BatchDelete(100, []uint{m1.ID, m2.ID}))
	assert.Len(t, repo.materials, 1)

	err = svc.BatchDelete(100, nil)
	assert.ErrorIs(t, err, ErrValidation)
}
